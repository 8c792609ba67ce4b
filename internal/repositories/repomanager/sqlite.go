package repomanager

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/migrations"
	"github.com/lettucedream/roster/internal/repositories/attendance"
	"github.com/lettucedream/roster/internal/repositories/sequences"
	"github.com/lettucedream/roster/internal/repositories/users"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. Connections must
// be opened with dbx.SQLiteDSN so foreign keys are enforced.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Attendance(db dbx.DBTX) attendance.Repository {
	return attendance.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Sequences(db *sql.DB) identifier.Store {
	return sequences.NewSQLiteStore(db)
}

func (m *SQLiteRepositoryManager) Dialect() dbx.Dialect { return dbx.SQLite }

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "sqlite3", migrations.SQLiteDir)
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}
