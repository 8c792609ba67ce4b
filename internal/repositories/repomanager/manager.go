package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/migrations"
	"github.com/lettucedream/roster/internal/repositories/attendance"
	"github.com/lettucedream/roster/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Attendance(db dbx.DBTX) attendance.Repository
	// Sequences takes the pool rather than a DBTX: a reservation must commit
	// on its own and survive a rollback of the surrounding transaction.
	Sequences(db *sql.DB) identifier.Store
	Dialect() dbx.Dialect
}

// New returns the manager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch dbx.Dialect(driver) {
	case dbx.Postgres:
		return NewPostgresRepositoryManager(), nil
	case dbx.SQLite:
		return NewSQLiteRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// migrate points goose at the embedded migrations for one dialect and runs
// them.
func migrate(ctx context.Context, db *sql.DB, gooseDialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return err
	}
	return nil
}
