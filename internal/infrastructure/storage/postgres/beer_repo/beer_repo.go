// Package beer_repo provides the PostgreSQL implementation of beer.Repository.
package beer_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/id"
	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/storage/beersql"
	"beercatalog/internal/infrastructure/storage/postgres"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

var _ beer.Repository = (*Repo)(nil)

// Repo stores beers in the "beer" table.
type Repo struct {
	txm *postgres.TxManager
	q   beersql.Queries
}

// New creates a Postgres beer repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm, q: beersql.New(squirrel.Dollar)}
}

// Insert adds a new row.
func (r *Repo) Insert(ctx context.Context, b *beer.Beer) error {
	sql, args, err := r.q.Insert(b).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewConflict("beer already exists").
				WithDetail("id", b.ID.String()).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", beersql.Table, err)
	}
	return nil
}

// FindByID retrieves a row by ID. Inside a transaction the row is locked FOR UPDATE.
func (r *Repo) FindByID(ctx context.Context, beerID id.ID) (*beer.Beer, error) {
	sql, args, err := r.q.FindByID(beerID, r.txm.InTx(ctx)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b beer.Beer
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(beer.EntityName, beerID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &b, nil
}

// Find returns every row matching p.
func (r *Repo) Find(ctx context.Context, p beer.Predicate) ([]*beer.Beer, error) {
	sql, args, err := r.q.Find(p).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	beers := []*beer.Beer{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &beers, sql, args...); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return beers, nil
}

// Update overwrites the mutable columns of the row.
func (r *Repo) Update(ctx context.Context, b *beer.Beer) error {
	sql, args, err := r.q.Update(b).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", beersql.Table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(beer.EntityName, b.ID.String())
	}
	return nil
}

// DeleteByID physically removes a row.
func (r *Repo) DeleteByID(ctx context.Context, beerID id.ID) error {
	sql, args, err := r.q.DeleteByID(beerID).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute delete %s: %w", beersql.Table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(beer.EntityName, beerID.String())
	}
	return nil
}

// DeleteAll removes every row.
func (r *Repo) DeleteAll(ctx context.Context) error {
	sql, args, err := r.q.DeleteAll().ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete all %s: %w", beersql.Table, err)
	}
	return nil
}
