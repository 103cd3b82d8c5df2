package table

// Serialize merges column metadata, the active sort and filters, and the
// result rows and pagination into the payload handed to a renderer.
func Serialize(d *Definition, s *State, r *Result) map[string]any {
	filters := make([]map[string]any, len(s.Filters))
	for i, f := range s.Filters {
		filters[i] = map[string]any{
			"column": f.Column,
			"clause": f.Clause.String(),
			"value":  f.Raw,
		}
	}
	var sort any
	if !s.Sort.IsZero() {
		sort = sortToMap(s.Sort)
	}

	p := r.Pagination
	pagination := map[string]any{
		"page":      p.Page,
		"per_page":  p.PerPage,
		"total":     p.Total,
		"last_page": p.LastPage,
		"from":      p.From,
		"to":        p.To,
		"has_more":  p.HasMore,
	}
	if p.NextCursor != "" {
		pagination["next_cursor"] = p.NextCursor
	}

	return map[string]any{
		"name":       d.name,
		"columns":    d.columnMaps(),
		"rows":       r.Rows,
		"pagination": pagination,
		"state": map[string]any{
			"sort":    sort,
			"filters": filters,
		},
	}
}
