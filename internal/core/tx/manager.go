// Package tx provides the transaction abstraction the domain layer depends on.
// Implementations live with each storage driver.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically against the storage layer.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
