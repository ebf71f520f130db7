// Package repomanager opens the configured storage backend, applies its
// schema migrations (via goose) and vends the account repository.
package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/graphpass/internal/filex"
	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/config"
	"github.com/dmitrijs2005/graphpass/internal/server/migrations"
	"github.com/dmitrijs2005/graphpass/internal/server/repositories/accounts"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// Manager owns the backend connection for the lifetime of the server.
type Manager struct {
	backend  string
	accounts accounts.Repository
	closers  []func() error
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// runMigrations is a seam for tests; it applies every pending migration in fsys.
var runMigrations = func(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Open connects to cfg.StorageBackend and migrates it.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*Manager, error) {
	m := &Manager{backend: cfg.StorageBackend}

	var err error
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		err = m.openPostgres(ctx, cfg.DatabaseDSN)
	case config.StorageSQLite:
		err = m.openSQLite(ctx, cfg.SQLitePath)
	case config.StorageRedis:
		err = m.openRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.StorageMemory:
		m.accounts = accounts.NewMemoryRepository()
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	log.Info(ctx, "storage ready", "backend", m.backend)
	return m, nil
}

func (m *Manager) openPostgres(ctx context.Context, dsn string) error {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	m.closers = append(m.closers, db.Close)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := runMigrations(ctx, db, goose.DialectPostgres, migrations.Postgres()); err != nil {
		return err
	}

	m.accounts = accounts.NewPostgresRepository(db)
	return nil
}

func (m *Manager) openSQLite(ctx context.Context, path string) error {
	abs, err := filex.EnsureParentDir(path)
	if err != nil {
		return err
	}

	db, err := sqlOpen("sqlite", "file:"+abs+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	m.closers = append(m.closers, db.Close)

	// one connection: transactions on the file are serialized in-process
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, goose.DialectSQLite3, migrations.SQLite()); err != nil {
		return err
	}

	m.accounts = accounts.NewSQLiteRepository(db)
	return nil
}

func (m *Manager) openRedis(ctx context.Context, opts *redis.Options) error {
	rdb := redis.NewClient(opts)
	m.closers = append(m.closers, rdb.Close)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	m.accounts = accounts.NewRedisRepository(rdb)
	return nil
}

// Backend names the storage in use.
func (m *Manager) Backend() string {
	return m.backend
}

// Accounts returns the account repository bound to the open backend.
func (m *Manager) Accounts() accounts.Repository {
	return m.accounts
}

// Close releases every connection opened by Open.
func (m *Manager) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
