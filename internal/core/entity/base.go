// Package entity provides the base types shared by persisted records.
package entity

import (
	"context"
	"time"

	"beercatalog/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without storage access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity carries the server-owned fields of a record.
// None of them is ever taken from caller input.
type BaseEntity struct {
	// ID is the primary key (UUIDv7), assigned once at creation
	ID id.ID `db:"id" json:"id"`

	// Version is incremented by exactly one on every mutation
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a BaseEntity with a fresh ID, version 1 and both timestamps set to now.
func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a mutation: version++ and updated_at refreshed.
func (b *BaseEntity) Touch() {
	b.Version++
	b.UpdatedAt = Now()
}

// Now returns the current time truncated to microseconds, the precision
// SQL timestamp columns keep, so stored and returned values compare equal.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
