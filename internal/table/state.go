package table

import (
	"strings"

	"tablekit/internal/domain"
)

// RawSort is the requested sort as received. An empty Column means none.
type RawSort struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// RawParams is a request decomposed into its sort, pagination and filter
// parts. Decoding it from a query string or JSON body is the transport's job.
type RawParams struct {
	Sort    RawSort     `json:"sort"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Cursor  string      `json:"cursor"`
	Filters []RawFilter `json:"filters"`
}

// State is one request's resolved view of a definition: validated filters,
// the effective sort and the requested window.
type State struct {
	def     *Definition
	Filters []Filter
	Sort    Sort
	Page    int
	PerPage int
	// Offset is set when the request carried a valid cursor; it then takes
	// precedence over Page.
	Offset    int
	HasCursor bool
}

// Definition returns the definition the state was resolved against.
func (s *State) Definition() *Definition { return s.def }

// Resolve validates raw against d. Filter problems abort resolution with the
// first error found; sort and pagination problems are corrected silently.
func Resolve(d *Definition, raw RawParams) (*State, error) {
	filters := make([]Filter, 0, len(raw.Filters))
	for _, rf := range raw.Filters {
		f, err := compileFilter(d, rf)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	page := domain.PageRequest{Page: raw.Page, PerPage: raw.PerPage, Cursor: raw.Cursor}
	st := &State{
		def:     d,
		Filters: filters,
		Sort:    resolveSort(d, raw.Sort),
		Page:    page.CurrentPage(),
		PerPage: page.Limit(d.perPage, d.maxPerPage),
	}
	if offset, ok := page.CursorOffset(); ok {
		st.Offset = offset
		st.HasCursor = true
	}
	return st, nil
}

// resolveSort falls back to the default sort for unknown or non-sortable
// columns so that stale links keep working.
func resolveSort(d *Definition, raw RawSort) Sort {
	key := strings.TrimSpace(raw.Column)
	dir := ParseDirection(raw.Direction)
	if strings.HasPrefix(key, "-") {
		key = key[1:]
		dir = Desc
	}
	if key == "" {
		return d.defaultSort
	}
	col, ok := d.Column(key)
	if !ok || !col.Sortable {
		return d.defaultSort
	}
	return Sort{Column: col.Key, Direction: dir}
}

// query builds the data-source query for the window starting at offset.
func (s *State) query(offset int) Query {
	order := make([]Sort, 0, 2)
	if !s.Sort.IsZero() {
		order = append(order, s.Sort)
	}
	if tb := s.def.tieBreaker; tb != "" && tb != s.Sort.Column {
		order = append(order, Sort{Column: tb, Direction: Asc})
	}
	return Query{
		Filters: s.Filters,
		Sort:    order,
		Limit:   s.PerPage,
		Offset:  offset,
	}
}

func (s *State) describe() string {
	parts := make([]string, 0, len(s.Filters))
	for _, f := range s.Filters {
		parts = append(parts, f.String())
	}
	filters := "none"
	if len(parts) > 0 {
		filters = strings.Join(parts, ", ")
	}
	return "filters: " + filters + "; sort: " + s.Sort.String()
}
