package models

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/lettucedream/roster/internal/identifier"
)

const dateLayout = time.DateOnly

// PublicUser is the only shape of a User that leaves the process. Fields are
// listed explicitly; the credential has no counterpart here.
type PublicUser struct {
	ID               identifier.ID    `json:"user_id"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	DateOfBirth      string           `json:"dateOfBirth,omitempty"`
	PhoneNumber      string           `json:"phoneNumber,omitempty"`
	StreetAddress    string           `json:"streetAddress,omitempty"`
	City             string           `json:"city,omitempty"`
	State            State            `json:"state,omitempty"`
	ZipCode          string           `json:"zipCode,omitempty"`
	CreatedAt        time.Time        `json:"createdDate"`
	Role             Role             `json:"role"`
	AttendanceStatus AttendanceStatus `json:"attendanceStatus"`
	LastLogin        time.Time        `json:"lastLogin"`
	Badge            string           `json:"base64EncodedImage,omitempty"`
}

// NewPublicUser projects u without a badge.
func NewPublicUser(u *User) PublicUser {
	p := PublicUser{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		PhoneNumber:      u.PhoneNumber,
		StreetAddress:    u.StreetAddress,
		City:             u.City,
		State:            u.State,
		ZipCode:          u.ZipCode,
		CreatedAt:        u.CreatedAt,
		Role:             u.Role,
		AttendanceStatus: u.AttendanceStatus,
		LastLogin:        u.LastLogin,
	}
	if !u.DateOfBirth.IsZero() {
		p.DateOfBirth = u.DateOfBirth.Format(dateLayout)
	}
	return p
}

// ArtifactRenderer draws the identity image shown next to a user, for
// instance a QR code of the user id.
type ArtifactRenderer interface {
	Render(ctx context.Context, u *User) ([]byte, error)
}

// ArtifactRendererFunc adapts a function to ArtifactRenderer.
type ArtifactRendererFunc func(ctx context.Context, u *User) ([]byte, error)

func (f ArtifactRendererFunc) Render(ctx context.Context, u *User) ([]byte, error) {
	return f(ctx, u)
}

// Present projects u for output and, when renderer is not nil, attaches a
// freshly rendered badge. The badge is never stored on u.
func Present(ctx context.Context, u *User, renderer ArtifactRenderer) (PublicUser, error) {
	p := NewPublicUser(u)
	if renderer == nil {
		return p, nil
	}
	img, err := renderer.Render(ctx, u)
	if err != nil {
		return PublicUser{}, fmt.Errorf("render badge for %s: %w", u.ID, err)
	}
	p.Badge = base64.StdEncoding.EncodeToString(img)
	return p, nil
}
