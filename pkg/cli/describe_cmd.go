package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDescribeCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := s.openApp(cmd.Context(), quietLogger())
			if err != nil {
				return err
			}
			defer release()

			if s.output() == "json" {
				def, err := a.Tables.Describe(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), def)
			}

			def, err := a.Registry.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sortDesc := "none"
			if ds := def.DefaultSort(); !ds.IsZero() {
				sortDesc = ds.String()
			}
			fmt.Fprintf(out, "%s  %s\n\n", headerColor.Sprint(def.Name()),
				faintColor.Sprintf("default sort: %s, %d per page (max %d)", sortDesc, def.PerPage(), def.MaxPerPage()))

			var rows [][]string
			for _, c := range def.Columns() {
				clauses := make([]string, len(c.Clauses))
				for i, cl := range c.Clauses {
					clauses[i] = cl.String()
				}
				rows = append(rows, []string{
					c.Key, c.Label, c.Type.String(), c.Alignment.String(),
					strconv.FormatBool(c.Sortable), strings.Join(clauses, ","),
				})
			}
			return printTable(out, []string{"key", "label", "type", "align", "sortable", "clauses"}, rows)
		},
	}
}
