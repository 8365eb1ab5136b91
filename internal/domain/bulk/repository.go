package bulk

import (
	"context"

	"github.com/google/uuid"
)

// ImportHistoryRepository persists import audit records
type ImportHistoryRepository interface {
	// FindByID returns shared.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*ImportHistory, error)

	FindAll(ctx context.Context, filter HistoryFilter) (*HistoryPage, error)

	// Save creates or updates
	Save(ctx context.Context, h *ImportHistory) error
}
