package beer

import (
	"context"

	"beercatalog/internal/core/id"
)

// Repository is the persistence port of the beer catalog.
// Keyed operations return apperror NotFound when the id does not resolve.
type Repository interface {
	// Insert stores a new record; ID, version and timestamps are already assigned.
	Insert(ctx context.Context, b *Beer) error

	// FindByID retrieves a record by ID.
	FindByID(ctx context.Context, id id.ID) (*Beer, error)

	// Find returns every record matching p, in storage-defined order.
	Find(ctx context.Context, p Predicate) ([]*Beer, error)

	// Update overwrites the stored record with b, including the version b carries.
	// No expected-version precondition is checked.
	Update(ctx context.Context, b *Beer) error

	// DeleteByID permanently removes a record.
	DeleteByID(ctx context.Context, id id.ID) error

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
}
