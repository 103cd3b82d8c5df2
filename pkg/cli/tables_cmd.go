package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTablesCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List registered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, release, err := s.openApp(cmd.Context(), quietLogger())
			if err != nil {
				return err
			}
			defer release()

			names := a.Tables.Tables()
			if s.output() == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"tables": names})
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
