// Package storage selects and opens the beer storage driver.
package storage

import (
	"context"
	"fmt"
	"strings"

	"beercatalog/internal/core/tx"
	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/storage/memory"
	"beercatalog/internal/infrastructure/storage/mysql"
	"beercatalog/internal/infrastructure/storage/postgres"
	"beercatalog/internal/infrastructure/storage/postgres/beer_repo"
	"beercatalog/pkg/logger"
)

// Driver names a storage backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// ParseDriver accepts a driver name in any letter case.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case DriverMemory, DriverPostgres, DriverMySQL:
		return d, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q", s)
	}
}

// Config selects and configures the backend.
type Config struct {
	Driver      Driver
	PostgresDSN string
	MySQLDSN    string
	MemoryFile  string
	MaxConns    int

	// Audit enables change history. Only the postgres driver records it.
	Audit bool
}

// Storage is an opened backend.
type Storage struct {
	Driver    Driver
	Repo      beer.Repository
	TxManager tx.Manager

	// Audit is nil unless change history is enabled and supported.
	Audit *postgres.AuditService

	ping    func(ctx context.Context) error
	closers []func()
}

// Open connects the configured driver.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return openMemory(ctx, cfg)
	case DriverPostgres:
		return openPostgres(ctx, cfg)
	case DriverMySQL:
		return openMySQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openMemory(ctx context.Context, cfg Config) (*Storage, error) {
	store, err := memory.Open(memory.Config{Filename: cfg.MemoryFile})
	if err != nil {
		return nil, err
	}
	warnAuditUnsupported(ctx, cfg)

	return &Storage{
		Driver:    DriverMemory,
		Repo:      memory.NewBeerRepo(store),
		TxManager: memory.NewTxManager(store),
		ping:      store.Ping,
		closers:   []func(){store.Close},
	}, nil
}

func openPostgres(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres driver requires DATABASE_URL")
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.PostgresDSN)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	pool.LogPoolStats(ctx)

	txm := postgres.NewTxManager(pool)
	s := &Storage{
		Driver:    DriverPostgres,
		Repo:      beer_repo.New(txm),
		TxManager: txm,
		ping:      txm.Ping,
		closers:   []func(){pool.Close},
	}

	if cfg.Audit {
		audit, err := postgres.NewAuditService(txm)
		if err != nil {
			pool.Close()
			return nil, err
		}
		s.Audit = audit
		s.closers = append(s.closers, audit.Close)
	}
	return s, nil
}

func openMySQL(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("mysql driver requires MYSQL_DSN")
	}

	dbCfg := mysql.DefaultConfig(cfg.MySQLDSN)
	if cfg.MaxConns > 0 {
		dbCfg.MaxOpenConns = cfg.MaxConns
	}
	db, err := mysql.Open(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	warnAuditUnsupported(ctx, cfg)

	txm := mysql.NewTxManager(db)
	return &Storage{
		Driver:    DriverMySQL,
		Repo:      mysql.NewBeerRepo(txm),
		TxManager: txm,
		ping:      txm.Ping,
		closers:   []func(){func() { _ = db.Close() }},
	}, nil
}

func warnAuditUnsupported(ctx context.Context, cfg Config) {
	if cfg.Audit {
		logger.Warn(ctx, "change audit is only recorded by the postgres driver", "driver", string(cfg.Driver))
	}
}

// Ping reports whether the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases every resource in reverse order of acquisition.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
