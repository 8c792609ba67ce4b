package services

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	_ "modernc.org/sqlite"

	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/logging"
	"github.com/lettucedream/roster/internal/repositories/repomanager"
	"github.com/lettucedream/roster/internal/repositories/sequences"
)

var userSequence = identifier.SequenceDefinition{Name: "user", Prefix: "LD_", IncrementBy: 1, Width: 5}

type env struct {
	db         *sql.DB
	store      identifier.Store
	logs       *bytes.Buffer
	users      *UserService
	attendance *AttendanceService
	clock      *fakeClock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newEnv(t *testing.T, store identifier.Store) *env {
	t.Helper()
	goose.SetLogger(goose.NopLogger())

	db, err := sql.Open("sqlite", dbx.SQLiteDSN(filepath.Join(t.TempDir(), "roster.db")))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), db))

	if store == nil {
		store = sequences.NewMemoryStore()
	}

	var logs bytes.Buffer
	logger, err := logging.New("debug", "json", &logs)
	require.NoError(t, err)

	gen := identifier.NewGenerator(store,
		identifier.WithLogger(logger),
		identifier.WithTracer(noop.NewTracerProvider().Tracer("test")))
	registry, err := identifier.NewRegistry(userSequence)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)}

	us, err := NewUserService(db, m, gen, registry, "user", logger)
	require.NoError(t, err)
	us.now = clock.Now
	us.validator.now = clock.Now

	as := NewAttendanceService(db, m, logger)
	as.now = clock.Now

	return &env{db: db, store: store, logs: &logs, users: us, attendance: as, clock: clock}
}

func (e *env) countUsers(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}
