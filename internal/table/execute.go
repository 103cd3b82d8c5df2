package table

import (
	"context"
	"errors"

	"tablekit/internal/domain"
)

// Pagination describes the window a Result covers.
type Pagination struct {
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int64  `json:"total"`
	LastPage   int    `json:"last_page"`
	From       int    `json:"from"`
	To         int    `json:"to"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Result is the output of executing a State.
type Result struct {
	Rows       []Row
	Pagination Pagination
}

// Execute runs the state against its definition's data source: one count
// and one page fetch. A page past the end is clamped to the last page.
// Source failures are returned as *domain.ExecutionError.
func Execute(ctx context.Context, s *State) (*Result, error) {
	src := s.def.source

	total, err := src.Count(ctx, s.Filters)
	if err != nil {
		return nil, s.executionError(err)
	}

	last := domain.LastPage(total, s.PerPage)
	var page, offset int
	if s.HasCursor {
		offset = s.Offset
		if int64(offset) >= total {
			offset = (last - 1) * s.PerPage
		}
		page = offset/s.PerPage + 1
	} else {
		page = min(s.Page, last)
		offset = (page - 1) * s.PerPage
	}

	rows, err := src.Fetch(ctx, s.query(offset))
	if err != nil {
		return nil, s.executionError(err)
	}
	if rows == nil {
		rows = []Row{}
	}

	p := Pagination{
		Page:       page,
		PerPage:    s.PerPage,
		Total:      total,
		LastPage:   last,
		NextCursor: domain.NextCursor(offset, s.PerPage, total),
	}
	p.HasMore = p.NextCursor != ""
	if len(rows) > 0 {
		p.From = offset + 1
		p.To = offset + len(rows)
	}
	return &Result{Rows: rows, Pagination: p}, nil
}

// executionError wraps a source failure. Unsupported clauses raised by the
// source are client errors and pass through unwrapped.
func (s *State) executionError(err error) error {
	var unsupported *domain.UnsupportedClauseError
	if errors.As(err, &unsupported) {
		return err
	}
	return &domain.ExecutionError{Table: s.def.name, Context: s.describe(), Err: err}
}
