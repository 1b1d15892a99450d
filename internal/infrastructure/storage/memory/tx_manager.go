package memory

import (
	"context"

	"beercatalog/internal/core/tx"
	"beercatalog/pkg/logger"
)

var _ tx.Manager = (*TxManager)(nil)

// TxManager serializes units of work on a Store and undoes their writes on failure.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn while holding the store lock.
// Nested calls reuse the transaction already in ctx.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		if rbErr := m.store.undo(j); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}
	return nil
}
