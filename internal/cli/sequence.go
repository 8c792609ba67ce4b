package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lettucedream/roster/internal/app"
	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/identifier"
)

func mintCmd(e *env) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "mint <sequence>",
		Short: "Reserve identifiers without creating entities",
		Long: `Reserve and print identifiers from a sequence.

Minted identifiers are consumed: they are never issued again, whether or not
anything is stored under them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("%w: count must be positive", common.ErrorValidation)
			}
			return e.withApp(cmd.Context(), func(a *app.App) error {
				def, err := a.Sequences.Lookup(args[0])
				if err != nil {
					return err
				}
				ids, err := a.Generator.NextN(cmd.Context(), def, count)
				for _, id := range ids {
					fmt.Fprintln(e.out, id)
				}
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of identifiers")
	return cmd
}

func parseCmd(e *env) *cobra.Command {
	var sequence, prefix string

	cmd := &cobra.Command{
		Use:   "parse <identifier>",
		Short: "Print the number inside an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if prefix == "" {
				registry, err := e.cfg.Registry()
				if err != nil {
					return err
				}
				if sequence == "" {
					sequence = e.cfg.UserSequence
				}
				def, err := registry.Lookup(sequence)
				if err != nil {
					return err
				}
				prefix = def.Prefix
			}

			n, err := identifier.Parse(args[0], prefix)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, n)
			return err
		},
	}

	cmd.Flags().StringVar(&sequence, "sequence", "", "sequence whose prefix to expect (default: the user sequence)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "expected prefix, overrides --sequence")
	return cmd
}

func sequenceCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Inspect configured sequences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := e.cfg.Registry()
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				def, _ := registry.Lookup(name)
				fmt.Fprintf(e.out, "%s\tprefix=%s\twidth=%d\tincrement_by=%d\n", def.Name, def.Prefix, def.Width, def.IncrementBy)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "current <sequence>",
		Short: "Show the last identifier reserved from a sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd.Context(), func(a *app.App) error {
				def, err := a.Sequences.Lookup(args[0])
				if err != nil {
					return err
				}
				id, err := a.Generator.Current(cmd.Context(), def)
				if err != nil {
					return err
				}
				if id.IsZero() {
					_, err = fmt.Fprintf(e.out, "%s: nothing issued yet\n", def.Name)
					return err
				}
				_, err = fmt.Fprintln(e.out, id)
				return err
			})
		},
	})

	return cmd
}
