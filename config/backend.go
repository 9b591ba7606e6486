package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asaidimu/go-folio/core/store"
	"github.com/asaidimu/go-folio/postgres"
	"github.com/asaidimu/go-folio/sqlite"
	"go.uber.org/zap"
)

// Store drivers. The two SQLite drivers differ only in the database/sql
// driver they use; programs import the ones they want registered.
const (
	DriverMemory   = "memory"
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenStore opens the configured backend, creates its schema and wraps it in
// a store.Store. The returned close function releases the database handle.
func (c *Config) OpenStore(ctx context.Context, logger *zap.Logger, opts ...store.Option) (*store.Store, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	options := store.DefaultInteractorOptions()
	options.TablePrefix = c.Store.TablePrefix

	var (
		interactor store.DatabaseInteractor
		closeFn    = func() error { return nil }
	)

	switch c.Store.Driver {
	case DriverMemory:
		interactor = store.NewMemoryInteractor()

	case DriverSQLite3, DriverSQLite:
		db, err := sql.Open(c.Store.Driver, c.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s database: %w", c.Store.Driver, err)
		}
		db.SetMaxOpenConns(1)
		si := sqlite.NewSQLiteInteractor(db, logger, options)
		if err := si.CreateSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		interactor, closeFn = si, db.Close

	case DriverPostgres:
		db, pi, err := postgres.Open(ctx, c.Store.DSN, logger, options)
		if err != nil {
			return nil, nil, err
		}
		interactor, closeFn = pi, db.Close

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	s, err := store.New(interactor, append([]store.Option{store.WithLogger(logger)}, opts...)...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info("Store opened", zap.String("driver", c.Store.Driver))
	return s, closeFn, nil
}
