package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/id"
	"beercatalog/internal/domain/beer"
)

const beerPrefix = "beer_"

var _ beer.Repository = (*BeerRepo)(nil)

// BeerRepo stores beers as JSON documents under "beer_<id>" keys.
type BeerRepo struct {
	store *Store
}

// NewBeerRepo creates a beer repository on store.
func NewBeerRepo(store *Store) *BeerRepo {
	return &BeerRepo{store: store}
}

func beerKey(beerID id.ID) string {
	return beerPrefix + beerID.String()
}

// Insert stores a new record. An existing key is a conflict.
func (r *BeerRepo) Insert(ctx context.Context, b *beer.Beer) error {
	return r.store.do(ctx, func(j *journal) error {
		key := beerKey(b.ID)
		_, exists, err := r.store.get(key)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflict("beer already exists").WithDetail("id", b.ID.String())
		}
		return r.write(j, b)
	})
}

// FindByID retrieves a record by ID.
func (r *BeerRepo) FindByID(ctx context.Context, beerID id.ID) (*beer.Beer, error) {
	var found *beer.Beer
	err := r.store.do(ctx, func(_ *journal) error {
		b, err := r.read(beerKey(beerID))
		if err != nil {
			return err
		}
		if b == nil {
			return apperror.NewNotFound(beer.EntityName, beerID.String())
		}
		found = b
		return nil
	})
	return found, err
}

// Find scans every beer key and keeps the records matching p, ordered by ID.
func (r *BeerRepo) Find(ctx context.Context, p beer.Predicate) ([]*beer.Beer, error) {
	result := []*beer.Beer{}
	err := r.store.do(ctx, func(_ *journal) error {
		keys, err := r.keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			b, err := r.read(key)
			if err != nil {
				return err
			}
			if b != nil && p.Matches(b) {
				result = append(result, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, k int) bool {
		return bytes.Compare(result[i].ID[:], result[k].ID[:]) < 0
	})
	return result, nil
}

// Update overwrites the stored record.
func (r *BeerRepo) Update(ctx context.Context, b *beer.Beer) error {
	return r.store.do(ctx, func(j *journal) error {
		_, exists, err := r.store.get(beerKey(b.ID))
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound(beer.EntityName, b.ID.String())
		}
		return r.write(j, b)
	})
}

// DeleteByID removes a record.
func (r *BeerRepo) DeleteByID(ctx context.Context, beerID id.ID) error {
	return r.store.do(ctx, func(j *journal) error {
		key := beerKey(beerID)
		_, exists, err := r.store.get(key)
		if err != nil {
			return err
		}
		if !exists {
			return apperror.NewNotFound(beer.EntityName, beerID.String())
		}
		return r.store.delete(j, key)
	})
}

// DeleteAll removes every beer key.
func (r *BeerRepo) DeleteAll(ctx context.Context) error {
	return r.store.do(ctx, func(j *journal) error {
		keys, err := r.keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := r.store.delete(j, key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BeerRepo) keys() ([]string, error) {
	all, err := r.store.db.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	keys := make([]string, 0, len(all))
	for _, key := range all {
		if strings.HasPrefix(key, beerPrefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// read returns nil without error when key is absent.
func (r *BeerRepo) read(key string) (*beer.Beer, error) {
	data, exists, err := r.store.get(key)
	if err != nil || !exists {
		return nil, err
	}
	var b beer.Beer
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &b, nil
}

func (r *BeerRepo) write(j *journal, b *beer.Beer) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode beer %s: %w", b.ID, err)
	}
	return r.store.set(j, beerKey(b.ID), data)
}
