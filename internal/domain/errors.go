// Package domain defines the error taxonomy and pagination primitives shared
// by the table engine, its data sources and the HTTP layer.
package domain

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UnsupportedClauseError is returned when a filter clause is not permitted
// for a column, is not a known clause at all, or has no translation in the
// data source that would evaluate it.
type UnsupportedClauseError struct {
	Clause string
	Column string
}

func (e *UnsupportedClauseError) Error() string {
	return fmt.Sprintf("Unsupported clause [%s]", e.Clause)
}

// UnknownColumnError is returned when a filter references a column key the
// table definition does not declare.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column [%s]", e.Column)
}

// DefinitionError reports a malformed table definition. It is raised while
// building a definition, never while serving a request.
type DefinitionError struct {
	Table    string
	Problems []string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid table definition %q: %s", e.Table, strings.Join(e.Problems, "; "))
}

// ExecutionError wraps a failure returned by a data source together with the
// filter and sort context of the query that triggered it.
type ExecutionError struct {
	Table   string
	Context string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("execute table %q: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("execute table %q (%s): %v", e.Table, e.Context, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnsupportedClause creates an UnsupportedClauseError for the given clause
// string value.
func ErrUnsupportedClause(clause string) *UnsupportedClauseError {
	return &UnsupportedClauseError{Clause: clause}
}

// ErrUnknownColumn creates an UnknownColumnError.
func ErrUnknownColumn(column string) *UnknownColumnError {
	return &UnknownColumnError{Column: column}
}
