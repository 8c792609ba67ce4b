package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/models"
)

const (
	insertQuery = `INSERT INTO users (user_id, first_name, last_name, date_of_birth, phone_number, password,
		 street_address, city, state, zip_code, created_date, role, attendance_status, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectQuery = `SELECT user_id, first_name, last_name, date_of_birth, phone_number, password,
		 street_address, city, state, zip_code, created_date, role, attendance_status, last_login
		 FROM users
		 WHERE user_id = ?`

	// SQLite has no row locks; its transactions take the database write
	// lock when they begin (see dbx.SQLiteDSN).
	lockClause = ` FOR UPDATE`

	// user_id and created_date are deliberately absent from the SET list.
	updateQuery = `UPDATE users SET first_name = ?, last_name = ?, date_of_birth = ?, phone_number = ?,
		 password = ?, street_address = ?, city = ?, state = ?, zip_code = ?, role = ?,
		 attendance_status = ?, last_login = ?
		 WHERE user_id = ?`
)

// SQLRepository stores users in the users table of PostgreSQL or SQLite.
type SQLRepository struct {
	db                dbx.DBTX
	insertQuery       string
	selectQuery       string
	selectLockedQuery string
	updateQuery       string
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.Postgres)
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.SQLite)
}

func newSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	r := &SQLRepository{
		db:          db,
		insertQuery: dbx.Rebind(d, insertQuery),
		selectQuery: dbx.Rebind(d, selectQuery),
		updateQuery: dbx.Rebind(d, updateQuery),
	}
	r.selectLockedQuery = r.selectQuery
	if d == dbx.Postgres {
		r.selectLockedQuery += lockClause
	}
	return r
}

func (r *SQLRepository) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		return fmt.Errorf("%w: user without id", common.ErrorValidation)
	}

	_, err := r.db.ExecContext(ctx, r.insertQuery,
		u.ID, u.FirstName, u.LastName, nullTime(u.DateOfBirth), u.PhoneNumber, u.Credential,
		u.StreetAddress, u.City, u.State, u.ZipCode, u.CreatedAt, u.Role, u.AttendanceStatus, u.LastLogin)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: user %s", common.ErrDuplicateIdentifier, u.ID)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id identifier.ID) (*models.User, error) {
	return r.find(ctx, r.selectQuery, id)
}

func (r *SQLRepository) FindByIDForUpdate(ctx context.Context, id identifier.ID) (*models.User, error) {
	return r.find(ctx, r.selectLockedQuery, id)
}

func (r *SQLRepository) find(ctx context.Context, query string, id identifier.ID) (*models.User, error) {
	u := &models.User{}
	var dob sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FirstName, &u.LastName, &dob, &u.PhoneNumber, &u.Credential,
		&u.StreetAddress, &u.City, &u.State, &u.ZipCode, &u.CreatedAt, &u.Role, &u.AttendanceStatus, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if dob.Valid {
		u.DateOfBirth = dob.Time
	}

	return u, nil
}

func (r *SQLRepository) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx, r.updateQuery,
		u.FirstName, u.LastName, nullTime(u.DateOfBirth), u.PhoneNumber,
		u.Credential, u.StreetAddress, u.City, u.State, u.ZipCode, u.Role,
		u.AttendanceStatus, u.LastLogin,
		u.ID)
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

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
