// Package memory implements the beer repository on an in-process hord key-value store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tarmac-project/hord"
	"github.com/tarmac-project/hord/drivers/hashmap"
)

// Config configures the in-memory store.
type Config struct {
	// Filename, when set, persists the hashmap to a JSON file between restarts.
	Filename string
}

// Store owns the hord database and the lock that serializes access to it.
// Every repository call outside a transaction takes the lock for its own duration;
// inside a transaction the lock is already held by TxManager.
type Store struct {
	db hord.Database
	mu sync.Mutex
}

// Open dials and sets up the hashmap driver.
func Open(cfg Config) (*Store, error) {
	db, err := hashmap.Dial(hashmap.Config{Filename: cfg.Filename})
	if err != nil {
		return nil, fmt.Errorf("create memory database: %w", err)
	}
	if err := db.Setup(); err != nil {
		return nil, fmt.Errorf("setup memory database: %w", err)
	}
	return &Store{db: db}, nil
}

// MustOpen opens a non-persistent store and panics on failure. Intended for tests.
func MustOpen() *Store {
	s, err := Open(Config{})
	if err != nil {
		panic(err)
	}
	return s
}

// Close releases the underlying database.
func (s *Store) Close() {
	s.db.Close()
}

// Ping reports whether the database is usable.
func (s *Store) Ping(_ context.Context) error {
	return s.db.HealthCheck()
}

// journal records the prior state of every key written inside a transaction.
type journal struct {
	entries []journalEntry
}

type journalEntry struct {
	key     string
	prev    []byte
	existed bool
}

type txKey struct{}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(txKey{}).(*journal)
	return j
}

// do runs fn with the store lock held, taking it only when ctx carries no transaction.
func (s *Store) do(ctx context.Context, fn func(j *journal) error) error {
	if j := journalFrom(ctx); j != nil {
		return fn(j)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

func (s *Store) get(key string) ([]byte, bool, error) {
	data, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, hord.ErrNil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) set(j *journal, key string, data []byte) error {
	if err := s.remember(j, key); err != nil {
		return err
	}
	if err := s.db.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(j *journal, key string) error {
	if err := s.remember(j, key); err != nil {
		return err
	}
	if err := s.db.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) remember(j *journal, key string) error {
	if j == nil {
		return nil
	}
	prev, existed, err := s.get(key)
	if err != nil {
		return err
	}
	j.entries = append(j.entries, journalEntry{key: key, prev: prev, existed: existed})
	return nil
}

// undo restores journaled keys in reverse order.
func (s *Store) undo(j *journal) error {
	var errs []error
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		var err error
		if e.existed {
			err = s.db.Set(e.key, e.prev)
		} else {
			err = s.db.Delete(e.key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", e.key, err))
		}
	}
	return errors.Join(errs...)
}
