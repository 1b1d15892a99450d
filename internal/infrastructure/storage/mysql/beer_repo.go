package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/go-sql-driver/mysql"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/id"
	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/storage/beersql"
)

// erDupEntry is the MySQL error number for a duplicate key.
const erDupEntry = 1062

var _ beer.Repository = (*BeerRepo)(nil)

// BeerRepo stores beers in the "beer" table.
type BeerRepo struct {
	txm *TxManager
	q   beersql.Queries
}

// NewBeerRepo creates a MySQL beer repository.
func NewBeerRepo(txm *TxManager) *BeerRepo {
	return &BeerRepo{txm: txm, q: beersql.New(squirrel.Question)}
}

// Insert adds a new row.
func (r *BeerRepo) Insert(ctx context.Context, b *beer.Beer) error {
	sql, args, err := r.q.Insert(b).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == erDupEntry {
			return apperror.NewConflict("beer already exists").
				WithDetail("id", b.ID.String()).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", beersql.Table, err)
	}
	return nil
}

// FindByID retrieves a row by ID. Inside a transaction the row is locked FOR UPDATE.
func (r *BeerRepo) FindByID(ctx context.Context, beerID id.ID) (*beer.Beer, error) {
	sql, args, err := r.q.FindByID(beerID, r.txm.InTx(ctx)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b beer.Beer
	if err := sqlscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound(beer.EntityName, beerID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &b, nil
}

// Find returns every row matching p.
func (r *BeerRepo) Find(ctx context.Context, p beer.Predicate) ([]*beer.Beer, error) {
	sql, args, err := r.q.Find(p).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	beers := []*beer.Beer{}
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &beers, sql, args...); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return beers, nil
}

// Update overwrites the mutable columns of the row.
// MySQL reports zero affected rows when nothing changed, so existence is
// checked separately in that case.
func (r *BeerRepo) Update(ctx context.Context, b *beer.Beer) error {
	sql, args, err := r.q.Update(b).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", beersql.Table, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		if _, err := r.FindByID(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByID physically removes a row.
func (r *BeerRepo) DeleteByID(ctx context.Context, beerID id.ID) error {
	sql, args, err := r.q.DeleteByID(beerID).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute delete %s: %w", beersql.Table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound(beer.EntityName, beerID.String())
	}
	return nil
}

// DeleteAll removes every row.
func (r *BeerRepo) DeleteAll(ctx context.Context) error {
	sql, args, err := r.q.DeleteAll().ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete all %s: %w", beersql.Table, err)
	}
	return nil
}
