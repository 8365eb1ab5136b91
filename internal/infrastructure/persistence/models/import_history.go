package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/marketplace/portal/internal/domain/shared"
)

// ImportHistoryModel is the persistence model for bulk.ImportHistory.
// Row errors and duplicates are stored as JSON documents.
type ImportHistoryModel struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey"`
	CreatedAt     time.Time   `gorm:"not null"`
	UpdatedAt     time.Time   `gorm:"not null"`
	Kind          bulk.Kind   `gorm:"type:varchar(20);not null;index:idx_import_vendor_kind,priority:2"`
	VendorID      string      `gorm:"type:varchar(64);not null;index:idx_import_vendor_kind,priority:1"`
	UploadedBy    string      `gorm:"type:varchar(64);not null;default:''"`
	FileName      string      `gorm:"type:varchar(255);not null"`
	FileSize      int64       `gorm:"not null;default:0"`
	ArchiveKey    string      `gorm:"type:varchar(512);not null;default:''"`
	Status        bulk.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	Message       string      `gorm:"type:text;not null;default:''"`
	Inserted      int         `gorm:"not null;default:0"`
	Updated       int         `gorm:"not null;default:0"`
	ErrorRows     int         `gorm:"not null;default:0"`
	DuplicateRows int         `gorm:"not null;default:0"`
	Errors        string      `gorm:"column:row_errors;not null;default:'[]'"`
	Duplicates    string      `gorm:"column:duplicates;not null;default:'[]'"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory
func (m *ImportHistoryModel) ToDomain() (*bulk.ImportHistory, error) {
	h := &bulk.ImportHistory{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Kind:          m.Kind,
		VendorID:      m.VendorID,
		UploadedBy:    m.UploadedBy,
		FileName:      m.FileName,
		FileSize:      m.FileSize,
		ArchiveKey:    m.ArchiveKey,
		Status:        m.Status,
		Message:       m.Message,
		Inserted:      m.Inserted,
		Updated:       m.Updated,
		ErrorRows:     m.ErrorRows,
		DuplicateRows: m.DuplicateRows,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
	}
	if err := h.SetProblemsFromJSON(m.Errors, m.Duplicates); err != nil {
		return nil, err
	}
	return h, nil
}

// ImportHistoryModelFromDomain builds a model from the domain record
func ImportHistoryModelFromDomain(h *bulk.ImportHistory) (*ImportHistoryModel, error) {
	errs, err := h.ErrorsJSON()
	if err != nil {
		return nil, err
	}
	dups, err := h.DuplicatesJSON()
	if err != nil {
		return nil, err
	}
	return &ImportHistoryModel{
		ID:            h.ID,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
		Kind:          h.Kind,
		VendorID:      h.VendorID,
		UploadedBy:    h.UploadedBy,
		FileName:      h.FileName,
		FileSize:      h.FileSize,
		ArchiveKey:    h.ArchiveKey,
		Status:        h.Status,
		Message:       h.Message,
		Inserted:      h.Inserted,
		Updated:       h.Updated,
		ErrorRows:     h.ErrorRows,
		DuplicateRows: h.DuplicateRows,
		Errors:        errs,
		Duplicates:    dups,
		StartedAt:     h.StartedAt,
		CompletedAt:   h.CompletedAt,
	}, nil
}
