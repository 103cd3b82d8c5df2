// Package testutil provides shared mock implementations of table interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"
	"sync"

	"tablekit/internal/table"
)

// === Data Source Mock ===

// MockDataSource implements table.DataSource for testing. Unset functions
// behave like an empty source. Every call is recorded.
type MockDataSource struct {
	CountFn func(ctx context.Context, filters []table.Filter) (int64, error)
	FetchFn func(ctx context.Context, q table.Query) ([]table.Row, error)

	mu      sync.Mutex
	Counts  [][]table.Filter // filters passed to each Count call
	Fetches []table.Query    // queries passed to each Fetch call
}

var _ table.DataSource = (*MockDataSource)(nil)

// Count implements the interface method for testing.
func (m *MockDataSource) Count(ctx context.Context, filters []table.Filter) (int64, error) {
	m.mu.Lock()
	m.Counts = append(m.Counts, filters)
	m.mu.Unlock()
	if m.CountFn != nil {
		return m.CountFn(ctx, filters)
	}
	return 0, nil
}

// Fetch implements the interface method for testing.
func (m *MockDataSource) Fetch(ctx context.Context, q table.Query) ([]table.Row, error) {
	m.mu.Lock()
	m.Fetches = append(m.Fetches, q)
	m.mu.Unlock()
	if m.FetchFn != nil {
		return m.FetchFn(ctx, q)
	}
	return nil, nil
}

// FailingDataSource returns a mock whose Count and Fetch both fail with err.
func FailingDataSource(err error) *MockDataSource {
	return &MockDataSource{
		CountFn: func(context.Context, []table.Filter) (int64, error) { return 0, err },
		FetchFn: func(context.Context, table.Query) ([]table.Row, error) { return nil, err },
	}
}
