package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lettucedream/roster/internal/app"
	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/cryptox"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/models"
)

// profileFlags are the editable profile fields shared by create and update.
type profileFlags struct {
	first, last, dob, phone, street, city, state, zip, role, status string
	password                                                         bool
}

func (p *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&p.first, "first", "", "first name")
	fs.StringVar(&p.last, "last", "", "last name")
	fs.StringVar(&p.dob, "dob", "", "date of birth, YYYY-MM-DD")
	fs.StringVar(&p.phone, "phone", "", "phone number")
	fs.StringVar(&p.street, "street", "", "street address")
	fs.StringVar(&p.city, "city", "", "city")
	fs.StringVar(&p.state, "state", "", "two-letter state code")
	fs.StringVar(&p.zip, "zip", "", "five-digit zip code")
	fs.StringVar(&p.role, "role", "", "ADMIN, STAFF or MEMBER")
	fs.StringVar(&p.status, "status", "", "COMPLETE or INCOMPLETE")
	fs.BoolVar(&p.password, "password", false, "prompt for a credential")
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date of birth must be YYYY-MM-DD", common.ErrorValidation)
	}
	return t, nil
}

// readCredential prompts for a password and derives the stored credential
// from it.
func readCredential(e *env) ([]byte, error) {
	pw, err := GetPassword(e.out)
	if err != nil {
		return nil, err
	}
	return cryptox.DeriveCredential(pw)
}

func userCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage roster members",
	}

	cmd.AddCommand(userCreateCmd(e))
	cmd.AddCommand(userGetCmd(e))
	cmd.AddCommand(userUpdateCmd(e))
	cmd.AddCommand(userLoginCmd(e))
	cmd.AddCommand(userStatusCmd(e))

	return cmd
}

func userCreateCmd(e *env) *cobra.Command {
	var p profileFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and print it",
		Long: `Create a user. The identifier is minted from the user sequence.

Missing first and last names are asked for interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := p.newUser(e)
			if err != nil {
				return err
			}
			return e.withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.Users.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				return e.printUser(cmd.Context(), u)
			})
		},
	}

	p.register(cmd)
	return cmd
}

func (p *profileFlags) newUser(e *env) (models.NewUser, error) {
	var (
		in  models.NewUser
		err error
	)

	if p.first == "" {
		if p.first, err = GetSimpleText(e.in, "First name", e.out); err != nil {
			return in, err
		}
	}
	if p.last == "" {
		if p.last, err = GetSimpleText(e.in, "Last name", e.out); err != nil {
			return in, err
		}
	}

	in.FirstName = p.first
	in.LastName = p.last
	in.PhoneNumber = p.phone
	in.StreetAddress = p.street
	in.City = p.city
	in.ZipCode = p.zip

	if p.dob != "" {
		if in.DateOfBirth, err = parseDate(p.dob); err != nil {
			return in, err
		}
	}
	if p.state != "" {
		if in.State, err = models.ParseState(p.state); err != nil {
			return in, err
		}
	}
	if p.role == "" {
		p.role = string(models.RoleMember)
	}
	if in.Role, err = models.ParseRole(p.role); err != nil {
		return in, err
	}
	if p.status != "" {
		if in.AttendanceStatus, err = models.ParseAttendanceStatus(p.status); err != nil {
			return in, err
		}
	}
	if p.password {
		if in.Credential, err = readCredential(e); err != nil {
			return in, err
		}
	}

	return in, nil
}

// update builds a UserUpdate from the flags the user actually set.
func (p *profileFlags) update(cmd *cobra.Command, e *env) (models.UserUpdate, error) {
	var upd models.UserUpdate
	fs := cmd.Flags()

	set := func(name string, v string, dst **string) {
		if fs.Changed(name) {
			*dst = &v
		}
	}
	set("first", p.first, &upd.FirstName)
	set("last", p.last, &upd.LastName)
	set("phone", p.phone, &upd.PhoneNumber)
	set("street", p.street, &upd.StreetAddress)
	set("city", p.city, &upd.City)
	set("zip", p.zip, &upd.ZipCode)

	if fs.Changed("dob") {
		dob, err := parseDate(p.dob)
		if err != nil {
			return upd, err
		}
		upd.DateOfBirth = &dob
	}
	if fs.Changed("state") {
		s, err := models.ParseState(p.state)
		if err != nil {
			return upd, err
		}
		upd.State = &s
	}
	if fs.Changed("role") {
		r, err := models.ParseRole(p.role)
		if err != nil {
			return upd, err
		}
		upd.Role = &r
	}
	if fs.Changed("status") {
		s, err := models.ParseAttendanceStatus(p.status)
		if err != nil {
			return upd, err
		}
		upd.AttendanceStatus = &s
	}
	if p.password {
		c, err := readCredential(e)
		if err != nil {
			return upd, err
		}
		upd.Credential = c
	}

	return upd, nil
}

func userGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Print a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.Users.Get(cmd.Context(), identifier.ID(args[0]))
				if err != nil {
					return err
				}
				return e.printUser(cmd.Context(), u)
			})
		},
	}
}

func userUpdateCmd(e *env) *cobra.Command {
	var p profileFlags

	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Change profile fields of a user",
		Long:  "Change the profile fields given as flags. The identifier and creation date never change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upd, err := p.update(cmd, e)
			if err != nil {
				return err
			}
			return e.withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.Users.Update(cmd.Context(), identifier.ID(args[0]), upd)
				if err != nil {
					return err
				}
				return e.printUser(cmd.Context(), u)
			})
		},
	}

	p.register(cmd)
	return cmd
}

func userLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id>",
		Short: "Record a login for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.Users.RecordLogin(cmd.Context(), identifier.ID(args[0]))
				if err != nil {
					return err
				}
				return e.printUser(cmd.Context(), u)
			})
		},
	}
}

func userStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id> <COMPLETE|INCOMPLETE>",
		Short: "Set a user's attendance status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseAttendanceStatus(args[1])
			if err != nil {
				return err
			}
			return e.withApp(cmd.Context(), func(a *app.App) error {
				u, err := a.Users.SetAttendanceStatus(cmd.Context(), identifier.ID(args[0]), status)
				if err != nil {
					return err
				}
				return e.printUser(cmd.Context(), u)
			})
		},
	}
}

func (e *env) printUser(ctx context.Context, u *models.User) error {
	pub, err := models.Present(ctx, u, nil)
	if err != nil {
		return err
	}
	return e.printJSON(pub)
}
