package bulk

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/marketplace/portal/internal/domain/shared"
)

// Kind is what a bulk upload changes on the backend
type Kind string

const (
	KindProducts Kind = "products"
	KindPrices   Kind = "prices"
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	return k == KindProducts || k == KindPrices
}

// Status of an import as recorded locally
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// XLSXContentType is the MIME type uploaded workbooks are forwarded with
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoFile is returned when an import is submitted without a workbook
var ErrNoFile = shared.NewDomainError("NO_FILE", "Please select a file to upload")

// ErrNotXLSX is returned for files that are not .xlsx workbooks
var ErrNotXLSX = shared.NewDomainError("INVALID_FILE_TYPE", "Only .xlsx files are supported")

// CheckFileName rejects anything that is not an .xlsx file
func CheckFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNoFile
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ErrNotXLSX
	}
	return nil
}

// ImportHistory is the portal's audit record of one bulk upload
type ImportHistory struct {
	shared.BaseEntity
	Kind          Kind        `json:"kind"`
	VendorID      string      `json:"vendor_id"`
	UploadedBy    string      `json:"uploaded_by"`
	FileName      string      `json:"file_name"`
	FileSize      int64       `json:"file_size"`
	ArchiveKey    string      `json:"archive_key,omitempty"`
	Status        Status      `json:"status"`
	Message       string      `json:"message,omitempty"`
	Inserted      int         `json:"inserted"`
	Updated       int         `json:"updated"`
	ErrorRows     int         `json:"error_rows"`
	DuplicateRows int         `json:"duplicate_rows"`
	Errors        []RowError  `json:"errors,omitempty"`
	Duplicates    []Duplicate `json:"duplicates,omitempty"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// NewImportHistory creates a pending record
func NewImportHistory(kind Kind, vendorID, uploadedBy, fileName string, fileSize int64) (*ImportHistory, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_IMPORT_KIND", fmt.Sprintf("Invalid import kind: %s", kind))
	}
	if err := CheckFileName(fileName); err != nil {
		return nil, err
	}
	if fileSize <= 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "The selected file is empty")
	}
	if vendorID == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor is required for a bulk upload")
	}

	return &ImportHistory{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		VendorID:   vendorID,
		UploadedBy: uploadedBy,
		FileName:   fileName,
		FileSize:   fileSize,
		Status:     StatusPending,
		Errors:     make([]RowError, 0),
		Duplicates: make([]Duplicate, 0),
	}, nil
}

// ArchiveObjectKey is where the workbook is stored in object storage
func (h *ImportHistory) ArchiveObjectKey() string {
	return fmt.Sprintf("imports/%s/%s/%s.xlsx", h.VendorID, h.Kind, h.ID)
}

// StartProcessing marks the upload as forwarded to the backend
func (h *ImportHistory) StartProcessing(archiveKey string) error {
	if h.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	now := time.Now()
	h.Status = StatusProcessing
	h.ArchiveKey = archiveKey
	h.StartedAt = &now
	h.UpdatedAt = now
	return nil
}

// Complete records an accepted upload. Row-level problems the backend
// reported are kept so they can be exported later.
func (h *ImportHistory) Complete(res Result) error {
	if h.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}
	h.apply(res)
	h.finish(StatusCompleted)
	return nil
}

// Fail records a rejected upload. res may be empty for transport failures.
func (h *ImportHistory) Fail(res Result) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}
	h.apply(res)
	h.finish(StatusFailed)
	return nil
}

func (h *ImportHistory) apply(res Result) {
	h.Message = res.Message
	h.Inserted = res.Inserted
	h.Updated = res.Updated
	h.Errors = res.Errors
	h.Duplicates = res.Duplicates
	h.ErrorRows = len(res.Errors)
	h.DuplicateRows = len(res.Duplicates)
}

func (h *ImportHistory) finish(s Status) {
	now := time.Now()
	h.Status = s
	h.CompletedAt = &now
	h.UpdatedAt = now
}

// HasProblems is true when there is anything to put in an error report
func (h *ImportHistory) HasProblems() bool {
	return len(h.Errors) > 0 || len(h.Duplicates) > 0
}

// Problems flattens errors and duplicates into report lines ordered by row
func (h *ImportHistory) Problems() []Problem {
	out := make([]Problem, 0, len(h.Errors)+len(h.Duplicates))
	for _, e := range h.Errors {
		out = append(out, Problem{Row: e.Row, Kind: "error", Field: e.Field, Message: e.Message})
	}
	for _, d := range h.Duplicates {
		out = append(out, Problem{Row: d.Row, Kind: "duplicate", Field: "sku", Value: d.SKU, Message: d.Message})
	}
	sortProblems(out)
	return out
}

// Duration of the backend call
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}

// ErrorsJSON serializes row errors for storage
func (h *ImportHistory) ErrorsJSON() (string, error) {
	return marshalList(h.Errors)
}

// DuplicatesJSON serializes duplicates for storage
func (h *ImportHistory) DuplicatesJSON() (string, error) {
	return marshalList(h.Duplicates)
}

// SetProblemsFromJSON restores errors and duplicates from storage
func (h *ImportHistory) SetProblemsFromJSON(errorsJSON, duplicatesJSON string) error {
	h.Errors = make([]RowError, 0)
	h.Duplicates = make([]Duplicate, 0)
	if errorsJSON != "" && errorsJSON != "[]" {
		if err := json.Unmarshal([]byte(errorsJSON), &h.Errors); err != nil {
			return fmt.Errorf("failed to unmarshal import errors: %w", err)
		}
	}
	if duplicatesJSON != "" && duplicatesJSON != "[]" {
		if err := json.Unmarshal([]byte(duplicatesJSON), &h.Duplicates); err != nil {
			return fmt.Errorf("failed to unmarshal import duplicates: %w", err)
		}
	}
	return nil
}

func marshalList[T any](items []T) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal import details: %w", err)
	}
	return string(data), nil
}

// HistoryFilter narrows a history listing
type HistoryFilter struct {
	VendorID string
	Kind     Kind
	Status   Status
	Page     int
	PageSize int
}

// Normalize applies paging defaults
func (f *HistoryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// HistoryPage is a page of import records
type HistoryPage struct {
	Items    []*ImportHistory `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

