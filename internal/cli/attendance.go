package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lettucedream/roster/internal/app"
	"github.com/lettucedream/roster/internal/identifier"
)

func attendanceCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attendance",
		Aliases: []string{"att"},
		Short:   "Record and list visits",
	}

	cmd.AddCommand(checkInCmd(e))
	cmd.AddCommand(checkOutCmd(e))
	cmd.AddCommand(attendanceListCmd(e))

	return cmd
}

func checkInCmd(e *env) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:     "checkin <user-id>",
		Aliases: []string{"record"},
		Short:   "Open a visit for a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd.Context(), func(a *app.App) error {
				visit, err := a.Attendance.CheckIn(cmd.Context(), identifier.ID(args[0]), note)
				if err != nil {
					return err
				}
				return e.printJSON(visit)
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "free-form note stored with the visit")
	return cmd
}

func checkOutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <user-id>",
		Short: "Close the user's open visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd.Context(), func(a *app.App) error {
				visit, err := a.Attendance.CheckOut(cmd.Context(), identifier.ID(args[0]))
				if err != nil {
					return err
				}
				return e.printJSON(visit)
			})
		},
	}
}

func attendanceListCmd(e *env) *cobra.Command {
	var count bool

	cmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "Print a user's visits, oldest first, one JSON object per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := identifier.ID(args[0])
			return e.withApp(cmd.Context(), func(a *app.App) error {
				if count {
					n, err := a.Attendance.Visits(cmd.Context(), id)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(e.out, n)
					return err
				}

				enc := json.NewEncoder(e.out)
				for visit, err := range a.Attendance.History(cmd.Context(), id) {
					if err != nil {
						return err
					}
					if err := enc.Encode(visit); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&count, "count", false, "print only the number of visits")
	return cmd
}
