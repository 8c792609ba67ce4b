package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lettucedream/roster/internal/app"
)

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// NewApp migrates on startup.
			return e.withApp(cmd.Context(), func(a *app.App) error {
				_, err := fmt.Fprintf(e.out, "%s schema is up to date\n", a.Config.DatabaseDriver)
				return err
			})
		},
	}
}
