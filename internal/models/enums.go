package models

import (
	"fmt"
	"strings"

	"github.com/lettucedream/roster/internal/common"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleStaff  Role = "STAFF"
	RoleMember Role = "MEMBER"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleAdmin, RoleStaff, RoleMember}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleMember:
		return true
	}
	return false
}

// ParseRole accepts any letter case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", common.ErrorValidation, s)
	}
	return r, nil
}

type AttendanceStatus string

const (
	AttendanceComplete   AttendanceStatus = "COMPLETE"
	AttendanceIncomplete AttendanceStatus = "INCOMPLETE"
)

// DefaultAttendanceStatus is assigned to users created without one.
const DefaultAttendanceStatus = AttendanceComplete

var AttendanceStatuses = []AttendanceStatus{AttendanceComplete, AttendanceIncomplete}

func (s AttendanceStatus) Valid() bool {
	return s == AttendanceComplete || s == AttendanceIncomplete
}

func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	st := AttendanceStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown attendance status %q", common.ErrorValidation, s)
	}
	return st, nil
}

// State is a two-letter US postal code.
type State string

var states = map[State]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// Valid reports whether s is a known code. The empty state is allowed for
// users without an address.
func (s State) Valid() bool {
	if s == "" {
		return true
	}
	_, ok := states[s]
	return ok
}

// Name returns the full state name, or "" for unknown codes.
func (s State) Name() string { return states[s] }

func ParseState(v string) (State, error) {
	st := State(strings.ToUpper(strings.TrimSpace(v)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown state %q", common.ErrorValidation, v)
	}
	return st, nil
}
