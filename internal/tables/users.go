// Package tables holds the table definitions compiled into the binary.
package tables

import (
	"tablekit/internal/source/sqlsource"
	"tablekit/internal/table"
)

// UsersName is the registry name of the users table.
const UsersName = "users"

// UsersColumns are the columns of the users table, in display order.
func UsersColumns() []table.Column {
	return []table.Column{
		table.NumericColumn("id", "ID", table.Sortable(), table.Filterable()),
		table.TextColumn("name", "Name", table.Sortable(), table.Filterable(table.Contains, table.Equals)),
		table.TextColumn("email", "Email", table.Filterable(table.Contains, table.Equals)),
		table.NumericColumn("age", "Age", table.Sortable(), table.Filterable(), table.Align(table.AlignCenter)),
		table.BooleanColumn("active", "Active", table.Filterable(), table.Align(table.AlignCenter)),
		table.DateColumn("created_at", "Joined", table.Sortable(), table.Filterable()),
	}
}

// Users builds the users table over source, sorted by id by default.
func Users(source table.DataSource) *table.Definition {
	return table.MustNew(UsersName, source, UsersColumns(),
		table.WithDefaultSort("id", table.Asc),
		table.WithPerPage(15),
		table.WithTieBreaker("id"),
	)
}

// UsersSQL builds the users table over the users relation of db.
func UsersSQL(db sqlsource.Querier, dialect sqlsource.Dialect) (*table.Definition, error) {
	keys := make([]string, 0, 6)
	for _, c := range UsersColumns() {
		keys = append(keys, c.Key)
	}
	src, err := sqlsource.New(db, dialect, "users", sqlsource.WithColumns(keys...))
	if err != nil {
		return nil, err
	}
	return Users(src), nil
}
