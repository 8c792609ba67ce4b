// Package repomanager provides concrete RepositoryManagers for PostgreSQL and
// SQLite, wiring together repository constructors and database migrations
// (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/migrations"
	"github.com/lettucedream/roster/internal/repositories/attendance"
	"github.com/lettucedream/roster/internal/repositories/sequences"
	"github.com/lettucedream/roster/internal/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Attendance returns an attendance.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Attendance(db dbx.DBTX) attendance.Repository {
	return attendance.NewPostgresRepository(db)
}

// Sequences returns the sequence_counters store.
func (m *PostgresRepositoryManager) Sequences(db *sql.DB) identifier.Store {
	return sequences.NewPostgresStore(db)
}

func (m *PostgresRepositoryManager) Dialect() dbx.Dialect { return dbx.Postgres }

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "pgx", migrations.PostgresDir)
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
