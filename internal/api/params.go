package api

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"tablekit/internal/table"
)

// ParseQuery decodes the query-string form of a table request:
//
//	sort=-id | sort=id&direction=desc
//	page=2&per_page=25 | cursor=<token>
//	filter[name][contains]=an
//	filter[status][in]=draft,archived  (or the key repeated)
//	filter[active]=true                (shorthand for equals)
//
// Malformed page numbers are ignored. Filters are returned ordered by column
// then clause so the echoed state is stable.
func ParseQuery(values url.Values) table.RawParams {
	raw := table.RawParams{
		Sort: table.RawSort{
			Column:    values.Get("sort"),
			Direction: values.Get("direction"),
		},
		Page:    atoiOrZero(values.Get("page")),
		PerPage: atoiOrZero(values.Get("per_page")),
		Cursor:  values.Get("cursor"),
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.HasPrefix(k, "filter[") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		column, clause, ok := parseFilterKey(k)
		if !ok {
			continue
		}
		vs := values[k]
		var value any = vs[0]
		if len(vs) > 1 {
			set := make([]any, len(vs))
			for i, v := range vs {
				set[i] = v
			}
			value = set
		}
		raw.Filters = append(raw.Filters, table.RawFilter{Column: column, Clause: clause, Value: value})
	}
	return raw
}

// parseFilterKey splits "filter[col][clause]" or "filter[col]".
func parseFilterKey(key string) (column, clause string, ok bool) {
	rest := strings.TrimPrefix(key, "filter[")
	column, rest, ok = strings.Cut(rest, "]")
	if !ok || column == "" {
		return "", "", false
	}
	if rest == "" {
		return column, table.Equals.String(), true
	}
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return "", "", false
	}
	clause = rest[1 : len(rest)-1]
	if clause == "" {
		return "", "", false
	}
	return column, clause, true
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
