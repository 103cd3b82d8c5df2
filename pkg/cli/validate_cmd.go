package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tablekit/internal/app"
)

func newValidateCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check YAML table definitions against the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.config()
			conn, dialect, err := app.OpenDatabase(cmd.Context(), cfg, quietLogger())
			if err != nil {
				return err
			}
			if conn == nil {
				return fmt.Errorf("validate needs a database provider, not %q", cfg.DBProvider)
			}
			defer conn.Close()

			defs, err := app.LoadDefinitions(os.DirFS(args[0]), ".", conn, dialect, cfg)
			if err != nil {
				return err
			}

			if s.output() == "json" {
				names := make([]string, len(defs))
				for i, d := range defs {
					names[i] = d.Name()
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"valid": names})
			}
			for _, d := range defs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("ok"), d.Name())
			}
			return nil
		},
	}
}
