package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tablekit/internal/table"
)

// filterFlag collects repeated --filter column:clause:value flags.
type filterFlag struct {
	filters []table.RawFilter
}

func (f *filterFlag) String() string {
	parts := make([]string, len(f.filters))
	for i, rf := range f.filters {
		parts[i] = fmt.Sprintf("%s:%s:%v", rf.Column, rf.Clause, rf.Value)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Set parses "column:clause:value" or "column:value" (equals). The value
// may itself contain colons.
func (f *filterFlag) Set(s string) error {
	parts := strings.SplitN(s, ":", 3)
	switch {
	case len(parts) == 3 && parts[0] != "" && parts[1] != "":
		f.filters = append(f.filters, table.RawFilter{Column: parts[0], Clause: parts[1], Value: parts[2]})
	case len(parts) == 2 && parts[0] != "":
		f.filters = append(f.filters, table.RawFilter{Column: parts[0], Clause: table.Equals.String(), Value: parts[1]})
	default:
		return fmt.Errorf("expected column:clause:value, got %q", s)
	}
	return nil
}

func (f *filterFlag) Type() string { return "filter" }

var _ pflag.Value = (*filterFlag)(nil)

func newQueryCmd(s *settings) *cobra.Command {
	var (
		filters filterFlag
		sortBy  string
		page    int
		perPage int
		cursor  string
	)

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Filter, sort and page through a table",
		Example: `  tablectl query users --filter name:contains:an --sort -id
  tablectl query users --filter age:between:30,40 --per-page 5 --page 2 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := s.openApp(cmd.Context(), quietLogger())
			if err != nil {
				return err
			}
			defer release()

			raw := table.RawParams{
				Sort:    table.RawSort{Column: sortBy},
				Page:    page,
				PerPage: perPage,
				Cursor:  cursor,
				Filters: filters.filters,
			}
			payload, err := a.Tables.Render(cmd.Context(), args[0], raw)
			if err != nil {
				return err
			}
			if s.output() == "json" {
				return printJSON(cmd.OutOrStdout(), payload)
			}

			def, err := a.Registry.Get(args[0])
			if err != nil {
				return err
			}
			return printPayload(cmd, def.Columns(), payload)
		},
	}

	cmd.Flags().Var(&filters, "filter", "Filter as column:clause:value (repeatable)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort column, prefix with - for descending")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Rows per page (default: table setting)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Continue from a next_cursor token")
	return cmd
}

func printPayload(cmd *cobra.Command, cols []table.Column, payload map[string]any) error {
	out := cmd.OutOrStdout()
	rows, _ := payload["rows"].([]table.Row)

	grid := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = formatCell(r[c.Key])
		}
		grid[i] = cells
	}
	if err := printTable(out, columnHeaders(cols), grid); err != nil {
		return err
	}

	p, _ := payload["pagination"].(map[string]any)
	footer := fmt.Sprintf("page %v of %v, %v rows", p["page"], p["last_page"], p["total"])
	if next, ok := p["next_cursor"]; ok {
		footer += fmt.Sprintf(", next cursor %v", next)
	}
	fmt.Fprintln(out, faintColor.Sprint(footer))
	return nil
}
