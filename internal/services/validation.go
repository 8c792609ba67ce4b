package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/models"
)

// Validator checks user profiles before they reach storage.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// customTag is a validation tag roster adds to validator's built-in set.
type customTag struct {
	name string
	fn   validator.Func
}

var customTags = []customTag{
	{"role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	}},
	{"us_state", func(fl validator.FieldLevel) bool {
		return models.State(fl.Field().String()).Valid()
	}},
	{"attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	}},
}

func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerTags(v, customTags); err != nil {
		return nil, err
	}
	return &Validator{validate: v, now: time.Now}, nil
}

func registerTags(v *validator.Validate, tags []customTag) error {
	for _, t := range tags {
		if err := v.RegisterValidation(t.name, t.fn); err != nil {
			return fmt.Errorf("register validation %q: %w", t.name, err)
		}
	}
	return nil
}

// Validate returns an error wrapping common.ErrorValidation that names every
// failing field.
func (v *Validator) Validate(u models.NewUser) error {
	var problems []string

	if err := v.validate.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	}
	if u.DateOfBirth.After(v.now()) {
		problems = append(problems, "DateOfBirth is in the future")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, "; "))
	}
	return nil
}

// profileOf returns the editable part of u so a stored user can be checked
// with the same rules as a new one.
func profileOf(u *models.User) models.NewUser {
	return models.NewUser{
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		DateOfBirth:      u.DateOfBirth,
		PhoneNumber:      u.PhoneNumber,
		Credential:       u.Credential,
		StreetAddress:    u.StreetAddress,
		City:             u.City,
		State:            u.State,
		ZipCode:          u.ZipCode,
		Role:             u.Role,
		AttendanceStatus: u.AttendanceStatus,
	}
}
