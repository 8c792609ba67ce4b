// Package app wires roster together: configuration, logging, the database,
// migrations, the sequence store, the identifier generator and the services.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/lettucedream/roster/internal/config"
	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/filex"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/logging"
	"github.com/lettucedream/roster/internal/repositories/repomanager"
	"github.com/lettucedream/roster/internal/repositories/sequences"
	"github.com/lettucedream/roster/internal/services"
)

type App struct {
	Config     *config.Config
	Logger     logging.Logger
	DB         *sql.DB
	Repos      repomanager.RepositoryManager
	Store      identifier.Store
	Sequences  *identifier.Registry
	Generator  *identifier.Generator
	Users      *services.UserService
	Attendance *services.AttendanceService

	closers []func() error
}

// NewApp opens the database, applies migrations and builds the services.
// Logs go to logOut. The caller must Close the App.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (_ *App, err error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger, Sequences: registry}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if app.Repos, err = repomanager.New(cfg.DatabaseDriver); err != nil {
		return nil, err
	}

	if err = app.openDB(ctx); err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err = app.Repos.RunMigrations(ctx, app.DB); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("sequence store init error: %w", err)
	}
	app.Store = sequences.WithTimeout(store, cfg.StoreTimeout)

	app.Generator = identifier.NewGenerator(app.Store, identifier.WithLogger(logger))

	app.Users, err = services.NewUserService(app.DB, app.Repos, app.Generator, registry, cfg.UserSequence, logger)
	if err != nil {
		return nil, err
	}
	app.Attendance = services.NewAttendanceService(app.DB, app.Repos, logger)

	logger.Debug(ctx, "app initialized",
		"driver", cfg.DatabaseDriver, "sequence_backend", cfg.SequenceBackend, "sequences", registry.Names())

	return app, nil
}

func (app *App) openDB(ctx context.Context) error {
	dsn := app.Config.DatabaseDSN
	if app.Repos.Dialect() == dbx.SQLite {
		if isSQLitePath(dsn) {
			if _, err := filex.EnsureParentDir(dsn); err != nil {
				return err
			}
		}
		dsn = dbx.SQLiteDSN(dsn)
	}

	db, err := sql.Open(app.Config.DatabaseDriver, dsn)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, db.Close)

	if app.Repos.Dialect() == dbx.SQLite && isSQLiteMemory(app.Config.DatabaseDSN) {
		// every connection to an in-memory database gets its own empty one
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	app.DB = db
	return nil
}

// isSQLitePath reports whether dsn names a database file rather than a URI
// or an in-memory database.
func isSQLitePath(dsn string) bool {
	return !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:")
}

func isSQLiteMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (app *App) openStore(ctx context.Context) (identifier.Store, error) {
	cfg := app.Config

	switch cfg.SequenceBackend {
	case config.BackendDatabase:
		return app.Repos.Sequences(app.DB), nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.closers = append(app.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return sequences.NewRedisStore(client, cfg.RedisKeyPrefix), nil

	case config.BackendFile:
		return sequences.NewFileStore(cfg.SequenceFile)

	case config.BackendMemory:
		app.Logger.Warn(ctx, "sequence counters are kept in memory and reset on exit")
		return sequences.NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unknown sequence backend %q", cfg.SequenceBackend)
}

// Close releases everything NewApp opened, newest first.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
