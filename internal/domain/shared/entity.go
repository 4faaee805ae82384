package shared

import "time"

// BaseEntity carries the storage-assigned surrogate key and the audit timestamps.
// A zero ID means the entity has not been persisted.
type BaseEntity struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps both timestamps with the current time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{CreatedAt: now, UpdatedAt: now}
}

// IsNew reports whether the entity has not been persisted yet
func (e *BaseEntity) IsNew() bool { return e.ID == 0 }

// Touch records a mutation
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now() }
