package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormImportHistoryRepository implements bulk.ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID finds an import record by ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	var model models.ImportHistoryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find import history: %w", err)
	}
	return model.ToDomain()
}

// FindAll lists import records, newest first
func (r *GormImportHistoryRepository) FindAll(ctx context.Context, filter bulk.HistoryFilter) (*bulk.HistoryPage, error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.ImportHistoryModel{})
	if filter.VendorID != "" {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count import histories: %w", err)
	}

	var rows []models.ImportHistoryModel
	if err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list import histories: %w", err)
	}

	items := make([]*bulk.ImportHistory, 0, len(rows))
	for i := range rows {
		h, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}

	return &bulk.HistoryPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Save creates or updates an import record
func (r *GormImportHistoryRepository) Save(ctx context.Context, h *bulk.ImportHistory) error {
	model, err := models.ImportHistoryModelFromDomain(h)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("save import history: %w", err)
	}
	return nil
}
