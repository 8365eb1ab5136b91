package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps for records the portal owns
// locally (wizard sessions, import audit). Catalog entities mirrored from
// the backend do not embed it.
type BaseEntity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
