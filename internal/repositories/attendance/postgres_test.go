package attendance

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/models"
)

var attendanceColumns = []string{"id", "user_id", "check_in", "check_out", "note", "created_at"}

const (
	insertRe = `(?s)^INSERT\s+INTO\s+attendance\s*\(id,\s*user_id,\s*check_in,\s*check_out,\s*note,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)$`
	listRe   = `(?s)^SELECT\s+id,.*FROM\s+attendance\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+check_in,\s*id$`
	openRe   = `(?s)^SELECT\s+id,.*WHERE\s+user_id\s*=\s*\$1\s+AND\s+check_out\s+IS\s+NULL.*LIMIT\s+1$`
	countRe  = `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+attendance\s+WHERE\s+user_id\s*=\s*\$1$`
	closeRe  = `(?s)^UPDATE\s+attendance\s+SET\s+check_out\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+AND\s+check_out\s+IS\s+NULL$`
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func testVisit(t *testing.T) *models.Attendance {
	t.Helper()
	a, err := models.NewAttendance("LD_00001", time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), "gym")
	if err != nil {
		t.Fatalf("NewAttendance: %v", err)
	}
	return a
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a := testVisit(t)
	mock.ExpectExec(insertRe).
		WithArgs(a.ID.String(), "LD_00001", a.CheckIn, nil, "gym", a.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), a); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestInsert_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertRe).WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Insert(context.Background(), testVisit(t))
	if !errors.Is(err, common.ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
}

func TestInsert_SecondOpenVisit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertRe).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Insert(context.Background(), testVisit(t))
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertRe).WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), testVisit(t))
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByUserID_IsLazy(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	seq := repo.FindByUserID(context.Background(), "LD_00001")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected before iteration: %v", err)
	}

	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	out := in.Add(time.Hour)
	id1, id2 := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	mock.ExpectQuery(listRe).WithArgs("LD_00001").WillReturnRows(
		sqlmock.NewRows(attendanceColumns).
			AddRow(id1.String(), "LD_00001", in, out, "gym", in).
			AddRow(id2.String(), "LD_00001", in.Add(24*time.Hour), nil, "", in.Add(24*time.Hour)))

	var got []*models.Attendance
	for a, err := range seq {
		if err != nil {
			t.Fatalf("iteration error: %v", err)
		}
		got = append(got, a)
	}

	if len(got) != 2 || got[0].ID != id1 || got[1].ID != id2 {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if got[0].CheckOut == nil || !got[0].CheckOut.Equal(out) || got[1].CheckOut != nil {
		t.Fatalf("unexpected check-out values: %v, %v", got[0].CheckOut, got[1].CheckOut)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindByUserID_StopEarly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(attendanceColumns)
	for i := 0; i < 5; i++ {
		rows.AddRow(uuid.Must(uuid.NewV7()).String(), "LD_00001", in, nil, "", in)
	}
	mock.ExpectQuery(listRe).WillReturnRows(rows).RowsWillBeClosed()

	n := 0
	for _, err := range repo.FindByUserID(context.Background(), "LD_00001") {
		if err != nil {
			t.Fatal(err)
		}
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("n = %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFindByUserID_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listRe).WillReturnError(errors.New("db err"))

	for a, err := range repo.FindByUserID(context.Background(), "LD_00001") {
		if a != nil || err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
			t.Fatalf("unexpected yield: %v, %v", a, err)
		}
	}
}

func TestFindOpenByUserID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	in := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	id := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(openRe).WithArgs("LD_00001").WillReturnRows(
		sqlmock.NewRows(attendanceColumns).AddRow(id.String(), "LD_00001", in, nil, "", in))
	mock.ExpectQuery(openRe).WithArgs("LD_00002").WillReturnError(sql.ErrNoRows)

	a, err := repo.FindOpenByUserID(context.Background(), "LD_00001")
	if err != nil || a.ID != id || !a.Open() {
		t.Fatalf("unexpected result: %+v, %v", a, err)
	}

	_, err = repo.FindOpenByUserID(context.Background(), "LD_00002")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestCountByUserID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(countRe).WithArgs("LD_00001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByUserID(context.Background(), "LD_00001")
	if err != nil || n != 3 {
		t.Fatalf("CountByUserID = %d, %v", n, err)
	}
}

func TestClose(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.Must(uuid.NewV7())
	at := time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC)
	mock.ExpectExec(closeRe).WithArgs(at, id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(closeRe).WithArgs(at, id.String()).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Close(context.Background(), id, at); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := repo.Close(context.Background(), id, at); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
