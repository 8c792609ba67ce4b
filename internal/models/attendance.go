package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/identifier"
)

// Attendance is one visit by a user. It refers to its user by id only and
// outlives the user: deleting a user leaves its history in place.
type Attendance struct {
	ID        uuid.UUID     `json:"id"`
	UserID    identifier.ID `json:"user_id"`
	CheckIn   time.Time     `json:"checkIn"`
	CheckOut  *time.Time    `json:"checkOut,omitempty"`
	Note      string        `json:"note,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewAttendance opens a visit for userID at checkIn. IDs are UUIDv7 so they
// sort by creation time.
func NewAttendance(userID identifier.ID, checkIn time.Time, note string) (*Attendance, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: attendance without user", common.ErrorValidation)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate attendance id: %w", err)
	}
	return &Attendance{
		ID:        id,
		UserID:    userID,
		CheckIn:   checkIn,
		Note:      note,
		CreatedAt: checkIn,
	}, nil
}

// Open reports whether the visit has not been checked out yet.
func (a *Attendance) Open() bool { return a.CheckOut == nil }

// Close records the check-out time.
func (a *Attendance) Close(at time.Time) error {
	if !a.Open() {
		return fmt.Errorf("%w: attendance %s already checked out", common.ErrorValidation, a.ID)
	}
	if at.Before(a.CheckIn) {
		return fmt.Errorf("%w: check-out before check-in", common.ErrorValidation)
	}
	a.CheckOut = &at
	return nil
}

// Duration is zero while the visit is open.
func (a *Attendance) Duration() time.Duration {
	if a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(a.CheckIn)
}
