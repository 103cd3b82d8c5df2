// Package table implements a declarative data-table engine.
//
// A Definition declares columns (type, alignment, sortability, permitted
// filter clauses) over a DataSource. Each request flows through
//
//	Resolve   raw params  -> *State   (validation, fail fast)
//	Execute   *State      -> *Result  (one count, one page fetch)
//	Serialize             -> map      (columns, rows, pagination, state)
//
// Definitions are immutable after New and can be shared across requests.
package table
