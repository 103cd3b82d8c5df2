package table

import "context"

// Row is one record returned by a data source, keyed by column key.
type Row = map[string]any

// Query is the compiled filter, sort and window handed to a data source.
// Sort always ends with the definition's tie-break key so the ordering is
// total.
type Query struct {
	Filters []Filter
	Sort    []Sort
	Limit   int
	Offset  int
}

// DataSource is the collaborator a definition reads rows from. Count and
// Fetch receive already-validated filters; a source that cannot translate a
// clause returns UnsupportedClause(clause).
type DataSource interface {
	Count(ctx context.Context, filters []Filter) (int64, error)
	Fetch(ctx context.Context, q Query) ([]Row, error)
}
