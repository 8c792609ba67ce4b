package sequences

import (
	"context"
	"database/sql"
	"errors"
)

// SQLStore keeps counters in the sequence_counters table. Reserve is a single
// upsert, so the row lock taken by the database is the only serialization
// point and different names proceed in parallel.
//
// The store must be given the connection pool, not an entity transaction:
// a reservation commits on its own and is not returned by a later rollback.
type SQLStore struct {
	db           *sql.DB
	reserveQuery string
	currentQuery string
}

// NewPostgresStore returns a SQLStore using PostgreSQL placeholders.
func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db: db,
		reserveQuery: `INSERT INTO sequence_counters (name, current_value)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE
		 SET current_value = sequence_counters.current_value + EXCLUDED.current_value,
		     updated_at = now()
		 WHERE sequence_counters.current_value <= 9223372036854775807 - EXCLUDED.current_value
		 RETURNING current_value`,
		currentQuery: `SELECT current_value FROM sequence_counters WHERE name = $1`,
	}
}

// NewSQLiteStore returns a SQLStore using SQLite placeholders. SQLite
// serializes writers on the database lock.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db: db,
		reserveQuery: `INSERT INTO sequence_counters (name, current_value)
		 VALUES (?, ?)
		 ON CONFLICT (name) DO UPDATE
		 SET current_value = sequence_counters.current_value + excluded.current_value,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE sequence_counters.current_value <= 9223372036854775807 - excluded.current_value
		 RETURNING current_value`,
		currentQuery: `SELECT current_value FROM sequence_counters WHERE name = ?`,
	}
}

func (s *SQLStore) Reserve(ctx context.Context, name string, incrementBy uint64) (uint64, error) {
	if err := checkIncrement(name, incrementBy); err != nil {
		return 0, err
	}

	var last int64
	err := s.db.QueryRowContext(ctx, s.reserveQuery, name, int64(incrementBy)).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// the WHERE guard refused to go past the column maximum
			return 0, exhausted(name)
		}
		return 0, unavailable("reserve", name, err)
	}

	return uint64(last) - incrementBy + 1, nil
}

func (s *SQLStore) Current(ctx context.Context, name string) (uint64, error) {
	var cur int64
	err := s.db.QueryRowContext(ctx, s.currentQuery, name).Scan(&cur)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, unavailable("read", name, err)
	}
	return uint64(cur), nil
}
