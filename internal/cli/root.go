package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/lettucedream/roster/internal/app"
	"github.com/lettucedream/roster/internal/config"
	"github.com/lettucedream/roster/internal/flagx"
)

// env is what every command needs: configuration and the process streams.
type env struct {
	cfg *config.Config
	in  *bufio.Reader
	out io.Writer
	err io.Writer

	// newApp is replaced in tests.
	newApp func(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app.App, error)
}

// withApp builds the App, runs fn and closes the App afterwards.
func (e *env) withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := e.newApp(ctx, e.cfg, e.err)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute loads configuration from args, then runs the command they name.
// args exclude the program name.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	e := &env{
		cfg:    cfg,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		err:    stderr,
		newApp: app.NewApp,
	}

	root := newRootCommand(e)
	root.SetArgs(flagx.RemoveArgs(args, config.Flags()))
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Membership roster and attendance tracking",
		Long: `Manage roster members and their attendance.

Global flags (-c config.json, -d DSN, -driver, -backend, -redis, -seq-file,
-timeout, -log-level, -log-format, -user-seq) may appear anywhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(migrateCmd(e))
	cmd.AddCommand(mintCmd(e))
	cmd.AddCommand(parseCmd(e))
	cmd.AddCommand(sequenceCmd(e))
	cmd.AddCommand(userCmd(e))
	cmd.AddCommand(attendanceCmd(e))

	return cmd
}
