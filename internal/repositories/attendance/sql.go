package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/models"
)

const columns = `id, user_id, check_in, check_out, note, created_at`

const (
	insertQuery = `INSERT INTO attendance (` + columns + `)
		 VALUES (?, ?, ?, ?, ?, ?)`

	listQuery = `SELECT ` + columns + ` FROM attendance
		 WHERE user_id = ?
		 ORDER BY check_in, id`

	openQuery = `SELECT ` + columns + ` FROM attendance
		 WHERE user_id = ? AND check_out IS NULL
		 ORDER BY check_in DESC, id DESC
		 LIMIT 1`

	countQuery = `SELECT COUNT(*) FROM attendance WHERE user_id = ?`

	closeQuery = `UPDATE attendance SET check_out = ?
		 WHERE id = ? AND check_out IS NULL`
)

// SQLRepository stores visits in the attendance table of PostgreSQL or SQLite.
type SQLRepository struct {
	db      dbx.DBTX
	queries map[string]string
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.Postgres)
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.SQLite)
}

func newSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	q := map[string]string{}
	for _, s := range []string{insertQuery, listQuery, openQuery, countQuery, closeQuery} {
		q[s] = dbx.Rebind(d, s)
	}
	return &SQLRepository{db: db, queries: q}
}

func (r *SQLRepository) Insert(ctx context.Context, a *models.Attendance) error {
	var checkOut sql.NullTime
	if a.CheckOut != nil {
		checkOut = sql.NullTime{Time: *a.CheckOut, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.queries[insertQuery],
		a.ID, a.UserID, a.CheckIn, checkOut, a.Note, a.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", common.ErrUnknownUser, a.UserID)
		}
		if a.Open() && dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s already has an open visit", common.ErrorValidation, a.UserID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindByUserID(ctx context.Context, userID identifier.ID) iter.Seq2[*models.Attendance, error] {
	return func(yield func(*models.Attendance, error) bool) {
		rows, err := r.db.QueryContext(ctx, r.queries[listQuery], userID)
		if err != nil {
			yield(nil, fmt.Errorf("db error: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scan(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(a, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("db error: %w", err))
		}
	}
}

func (r *SQLRepository) FindOpenByUserID(ctx context.Context, userID identifier.ID) (*models.Attendance, error) {
	a, err := scan(r.db.QueryRowContext(ctx, r.queries[openQuery], userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLRepository) CountByUserID(ctx context.Context, userID identifier.ID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.queries[countQuery], userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Close sets check_out on a visit that is still open. A visit that does not
// exist or is already closed yields common.ErrorNotFound.
func (r *SQLRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.queries[closeQuery], at, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Attendance, error) {
	a := &models.Attendance{}
	var checkOut sql.NullTime
	if err := s.Scan(&a.ID, &a.UserID, &a.CheckIn, &checkOut, &a.Note, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if checkOut.Valid {
		t := checkOut.Time
		a.CheckOut = &t
	}
	return a, nil
}
