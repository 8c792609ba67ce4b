package attendance

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/migrations"
	"github.com/lettucedream/roster/internal/models"
)

func newSQLiteRepo(t *testing.T) (*SQLRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", dbx.SQLiteDSN(filepath.Join(t.TempDir(), "roster.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, migrations.SQLiteDir))

	_, err = db.Exec(`INSERT INTO users (user_id, first_name, last_name, created_date, role, last_login)
		VALUES ('LD_00001', 'Ann', 'Lee', CURRENT_TIMESTAMP, 'MEMBER', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	return NewSQLiteRepository(db), db
}

func TestSQLite_InsertAndList(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	for i := 2; i >= 0; i-- {
		a, err := models.NewAttendance("LD_00001", base.Add(time.Duration(i)*24*time.Hour), "")
		require.NoError(t, err)
		require.NoError(t, a.Close(a.CheckIn.Add(time.Hour)))
		require.NoError(t, repo.Insert(ctx, a))
	}

	var checkIns []time.Time
	for a, err := range repo.FindByUserID(ctx, "LD_00001") {
		require.NoError(t, err)
		checkIns = append(checkIns, a.CheckIn)
	}
	require.Len(t, checkIns, 3)
	for i := 1; i < len(checkIns); i++ {
		assert.True(t, checkIns[i-1].Before(checkIns[i]), "history is ordered by check-in")
	}

	n, err := repo.CountByUserID(ctx, "LD_00001")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLite_ForeignKeyRejectsUnknownUser(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	a, err := models.NewAttendance("LD_09999", time.Now().UTC(), "")
	require.NoError(t, err)

	err = repo.Insert(context.Background(), a)
	require.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestSQLite_HistoryOutlivesUser(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	a, err := models.NewAttendance("LD_00001", time.Now().UTC(), "")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, a))

	// Deleting a user with history is refused rather than cascaded.
	_, err = db.Exec(`DELETE FROM users WHERE user_id = 'LD_00001'`)
	require.Error(t, err)
	assert.True(t, dbx.IsForeignKeyViolation(err))

	n, err := repo.CountByUserID(ctx, "LD_00001")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_OpenAndClose(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	a, err := models.NewAttendance("LD_00001", in, "")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, a))

	open, err := repo.FindOpenByUserID(ctx, "LD_00001")
	require.NoError(t, err)
	assert.Equal(t, a.ID, open.ID)

	require.NoError(t, repo.Close(ctx, a.ID, in.Add(time.Hour)))
	require.ErrorIs(t, repo.Close(ctx, a.ID, in.Add(2*time.Hour)), common.ErrorNotFound)

	_, err = repo.FindOpenByUserID(ctx, "LD_00001")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_OneOpenVisitPerUser(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	first, err := models.NewAttendance("LD_00001", in, "")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, first))

	second, err := models.NewAttendance("LD_00001", in.Add(time.Minute), "")
	require.NoError(t, err)
	require.ErrorIs(t, repo.Insert(ctx, second), common.ErrorValidation)

	// once the first visit is closed a new one may open
	require.NoError(t, repo.Close(ctx, first.ID, in.Add(time.Hour)))
	require.NoError(t, repo.Insert(ctx, second))

	n, err := repo.CountByUserID(ctx, "LD_00001")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
