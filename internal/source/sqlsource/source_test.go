package sqlsource_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekit/internal/db"
	"tablekit/internal/domain"
	"tablekit/internal/source/sqlsource"
	"tablekit/internal/table"
)

var allUserColumns = []string{"id", "name", "email", "age", "active", "created_at"}

func newUsersSource(t *testing.T, opts ...sqlsource.Option) *sqlsource.Source {
	t.Helper()
	conn := db.OpenTestSQLite(t)
	if len(opts) == 0 {
		opts = []sqlsource.Option{sqlsource.WithColumns(allUserColumns...)}
	}
	src, err := sqlsource.New(conn, sqlsource.SQLite, "users", opts...)
	require.NoError(t, err)
	return src
}

func byID() []table.Sort {
	return []table.Sort{{Column: "id", Direction: table.Asc}}
}

func rowIDs(rows []table.Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r["id"].(int64)
	}
	return out
}

func TestSource_CountWithoutFilters(t *testing.T) {
	src := newUsersSource(t)

	n, err := src.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestSource_FetchFilters(t *testing.T) {
	src := newUsersSource(t)

	tests := []struct {
		name    string
		filters []table.Filter
		want    []int64
	}{
		{
			name:    "contains is case insensitive",
			filters: []table.Filter{{Column: "name", Type: table.TypeText, Clause: table.Contains, Value: "AN"}},
			want:    []int64{1, 2, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name:    "equals text",
			filters: []table.Filter{{Column: "email", Type: table.TypeText, Clause: table.Equals, Value: "gus@example.com"}},
			want:    []int64{7},
		},
		{
			name:    "not equals numeric",
			filters: []table.Filter{{Column: "id", Type: table.TypeNumeric, Clause: table.NotEquals, Value: float64(1)}},
			want:    []int64{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		},
		{
			name:    "boolean false",
			filters: []table.Filter{{Column: "active", Type: table.TypeBoolean, Clause: table.Equals, Value: false}},
			want:    []int64{3, 6, 9},
		},
		{
			name: "between is inclusive",
			filters: []table.Filter{{Column: "age", Type: table.TypeNumeric, Clause: table.Between,
				Value: table.Range{Low: float64(31), High: float64(37)}}},
			want: []int64{1, 4, 8, 11},
		},
		{
			name: "in set",
			filters: []table.Filter{{Column: "id", Type: table.TypeNumeric, Clause: table.In,
				Value: []any{float64(2), float64(5), float64(99)}}},
			want: []int64{2, 5},
		},
		{
			name:    "less than",
			filters: []table.Filter{{Column: "age", Type: table.TypeNumeric, Clause: table.LessThan, Value: float64(29)}},
			want:    []int64{5, 9},
		},
		{
			name: "date greater than",
			filters: []table.Filter{{Column: "created_at", Type: table.TypeDate, Clause: table.GreaterThan,
				Value: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}},
			want: []int64{10, 11, 12},
		},
		{
			name: "date equals stored timestamp",
			filters: []table.Filter{{Column: "created_at", Type: table.TypeDate, Clause: table.Equals,
				Value: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)}},
			want: []int64{1},
		},
		{
			name: "date less than excludes boundary",
			filters: []table.Filter{{Column: "created_at", Type: table.TypeDate, Clause: table.LessThan,
				Value: time.Date(2024, 1, 12, 14, 30, 0, 0, time.UTC)}},
			want: []int64{1},
		},
		{
			name: "date between includes both bounds",
			filters: []table.Filter{{Column: "created_at", Type: table.TypeDate, Clause: table.Between,
				Value: table.Range{Low: time.Date(2024, 1, 12, 14, 30, 0, 0, time.UTC), High: time.Date(2024, 2, 18, 17, 45, 0, 0, time.UTC)}}},
			want: []int64{2, 3, 4},
		},
		{
			name:    "fractional numeric never equals an integer",
			filters: []table.Filter{{Column: "age", Type: table.TypeNumeric, Clause: table.Equals, Value: 34.5}},
			want:    []int64{},
		},
		{
			name: "filters are conjunctive",
			filters: []table.Filter{
				{Column: "active", Type: table.TypeBoolean, Clause: table.Equals, Value: false},
				{Column: "age", Type: table.TypeNumeric, Clause: table.GreaterThan, Value: float64(28)},
			},
			want: []int64{3, 6},
		},
		{
			name:    "like wildcards are literal",
			filters: []table.Filter{{Column: "name", Type: table.TypeText, Clause: table.Contains, Value: "%"}},
			want:    []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rows, err := src.Fetch(ctx, table.Query{Filters: tt.filters, Sort: byID()})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rowIDs(rows))

			n, err := src.Count(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), n)
		})
	}
}

func TestSource_FetchSortAndWindow(t *testing.T) {
	src := newUsersSource(t)

	rows, err := src.Fetch(context.Background(), table.Query{
		Sort: []table.Sort{
			{Column: "age", Direction: table.Desc},
			{Column: "id", Direction: table.Asc},
		},
		Limit:  4,
		Offset: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{6, 2, 10, 4}, rowIDs(rows))
}

func TestSource_FetchScansColumnValues(t *testing.T) {
	src := newUsersSource(t)

	rows, err := src.Fetch(context.Background(), table.Query{
		Filters: []table.Filter{{Column: "id", Type: table.TypeNumeric, Clause: table.Equals, Value: float64(1)}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Len(t, row, len(allUserColumns))
	assert.Equal(t, "Ann Lee", row["name"])
	assert.Equal(t, "ann@example.com", row["email"])
	assert.Equal(t, int64(34), row["age"])
	_, isTime := row["created_at"].(time.Time)
	assert.True(t, isTime, "created_at scanned as %T", row["created_at"])
}

func TestSource_Expression(t *testing.T) {
	src := newUsersSource(t,
		sqlsource.WithColumns("id", "initial"),
		sqlsource.WithExpression("initial", "substr(name, 1, 1)"),
	)
	ctx := context.Background()

	rows, err := src.Fetch(ctx, table.Query{
		Filters: []table.Filter{{Column: "initial", Type: table.TypeText, Clause: table.Equals, Value: "A"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, table.Row{"id": int64(1), "initial": "A"}, rows[0])

	rows, err = src.Fetch(ctx, table.Query{
		Sort:  []table.Sort{{Column: "initial", Direction: table.Desc}},
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 11}, rowIDs(rows))
}

func TestSource_SelectsAllColumnsByDefault(t *testing.T) {
	conn := db.OpenTestSQLite(t)
	src, err := sqlsource.New(conn, sqlsource.SQLite, "posts")
	require.NoError(t, err)

	rows, err := src.Fetch(context.Background(), table.Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], "title")
	assert.Contains(t, rows[0], "status")
}

func TestSource_UnsupportedClause(t *testing.T) {
	src := newUsersSource(t)

	_, err := src.Count(context.Background(), []table.Filter{{Column: "name", Clause: table.Clause(99), Value: "x"}})
	var unsupported *domain.UnsupportedClauseError
	require.ErrorAs(t, err, &unsupported)
}

func TestSource_QueryErrorsAreWrapped(t *testing.T) {
	src := newUsersSource(t, sqlsource.WithColumns("id", "missing_column"))

	_, err := src.Fetch(context.Background(), table.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query users")
}

func TestSource_ContextCanceled(t *testing.T) {
	src := newUsersSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Count(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	conn := db.OpenTestSQLite(t)

	_, err := sqlsource.New(nil, sqlsource.SQLite, "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database handle is required")

	_, err = sqlsource.New(conn, sqlsource.SQLite, "users; DROP TABLE users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table name")

	_, err = sqlsource.New(conn, sqlsource.SQLite, "users", sqlsource.WithColumns("id", "name--"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "name--"`)

	_, err = sqlsource.New(conn, sqlsource.SQLite, "main.users")
	require.NoError(t, err)
}
