// Package models holds the roster domain records and their output projections.
package models

import (
	"fmt"
	"time"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/identifier"
)

// User is a roster member as persisted. ID and CreatedAt are assigned once at
// creation and are never changed by Apply.
type User struct {
	ID               identifier.ID    `json:"user_id"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	DateOfBirth      time.Time        `json:"dateOfBirth"`
	PhoneNumber      string           `json:"phoneNumber"`
	Credential       []byte           `json:"-"`
	StreetAddress    string           `json:"streetAddress"`
	City             string           `json:"city"`
	State            State            `json:"state"`
	ZipCode          string           `json:"zipCode"`
	CreatedAt        time.Time        `json:"createdDate"`
	Role             Role             `json:"role"`
	AttendanceStatus AttendanceStatus `json:"attendanceStatus"`
	LastLogin        time.Time        `json:"lastLogin"`
}

// NewUser carries the caller-supplied fields of a user being created.
type NewUser struct {
	FirstName        string           `validate:"required,max=100"`
	LastName         string           `validate:"required,max=100"`
	DateOfBirth      time.Time
	PhoneNumber      string           `validate:"max=20"`
	Credential       []byte           `validate:"omitempty,max=1024"`
	StreetAddress    string           `validate:"max=200"`
	City             string           `validate:"max=100"`
	State            State            `validate:"us_state"`
	ZipCode          string           `validate:"omitempty,numeric,len=5"`
	Role             Role             `validate:"required,role"`
	AttendanceStatus AttendanceStatus `validate:"omitempty,attendance_status"`
}

// Build returns the User that NewUser describes. The caller supplies the
// minted id and the creation time.
func (n NewUser) Build(id identifier.ID, now time.Time) *User {
	status := n.AttendanceStatus
	if status == "" {
		status = DefaultAttendanceStatus
	}
	return &User{
		ID:               id,
		FirstName:        n.FirstName,
		LastName:         n.LastName,
		DateOfBirth:      n.DateOfBirth,
		PhoneNumber:      n.PhoneNumber,
		Credential:       n.Credential,
		StreetAddress:    n.StreetAddress,
		City:             n.City,
		State:            n.State,
		ZipCode:          n.ZipCode,
		CreatedAt:        now,
		Role:             n.Role,
		AttendanceStatus: status,
		LastLogin:        now,
	}
}

// UserUpdate is a partial profile edit. Nil fields are left untouched.
type UserUpdate struct {
	FirstName        *string
	LastName         *string
	DateOfBirth      *time.Time
	PhoneNumber      *string
	Credential       []byte
	StreetAddress    *string
	City             *string
	State            *State
	ZipCode          *string
	Role             *Role
	AttendanceStatus *AttendanceStatus
	LastLogin        *time.Time
}

// Apply copies the set fields of upd onto u. Enum fields are checked before
// anything is written, so a failed Apply leaves u unchanged.
func (u *User) Apply(upd UserUpdate) error {
	if upd.Role != nil && !upd.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", common.ErrorValidation, *upd.Role)
	}
	if upd.State != nil && !upd.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", common.ErrorValidation, *upd.State)
	}
	if upd.AttendanceStatus != nil && !upd.AttendanceStatus.Valid() {
		return fmt.Errorf("%w: unknown attendance status %q", common.ErrorValidation, *upd.AttendanceStatus)
	}

	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = *upd.DateOfBirth
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Credential != nil {
		u.Credential = upd.Credential
	}
	if upd.StreetAddress != nil {
		u.StreetAddress = *upd.StreetAddress
	}
	if upd.City != nil {
		u.City = *upd.City
	}
	if upd.State != nil {
		u.State = *upd.State
	}
	if upd.ZipCode != nil {
		u.ZipCode = *upd.ZipCode
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.AttendanceStatus != nil {
		u.AttendanceStatus = *upd.AttendanceStatus
	}
	if upd.LastLogin != nil {
		u.LastLogin = *upd.LastLogin
	}
	return nil
}

// IsEmpty reports whether the update sets nothing.
func (upd UserUpdate) IsEmpty() bool {
	return upd.FirstName == nil && upd.LastName == nil && upd.DateOfBirth == nil &&
		upd.PhoneNumber == nil && upd.Credential == nil && upd.StreetAddress == nil &&
		upd.City == nil && upd.State == nil && upd.ZipCode == nil && upd.Role == nil &&
		upd.AttendanceStatus == nil && upd.LastLogin == nil
}
