// Package tables serves registered table definitions: it looks a table up
// by name and runs the resolve, execute, serialize pipeline for a request.
package tables

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tablekit/internal/domain"
	"tablekit/internal/table"
)

// TableService renders registered tables.
//
//nolint:revive // Name chosen for clarity across package boundaries
type TableService struct {
	registry *Registry
	logger   *slog.Logger
}

// NewTableService creates a TableService over registry.
func NewTableService(registry *Registry, logger *slog.Logger) *TableService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TableService{registry: registry, logger: logger}
}

// Tables lists registered table names.
func (s *TableService) Tables() []string {
	return s.registry.Names()
}

// Describe returns the column metadata of a table.
func (s *TableService) Describe(name string) (map[string]any, error) {
	def, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return def.ToArray(), nil
}

// Render runs one request against the named table and returns the payload
// for the rendering layer.
func (s *TableService) Render(ctx context.Context, name string, raw table.RawParams) (map[string]any, error) {
	def, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("table", name)

	st, err := table.Resolve(def, raw)
	if err != nil {
		log.DebugContext(ctx, "table request rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	res, err := table.Execute(ctx, st)
	if err != nil {
		var execErr *domain.ExecutionError
		if errors.As(err, &execErr) {
			log.ErrorContext(ctx, "table execution failed", "error", err, "query", execErr.Context)
		} else {
			log.DebugContext(ctx, "table request rejected by source", "error", err)
		}
		return nil, err
	}

	log.DebugContext(ctx, "table rendered",
		"rows", len(res.Rows),
		"total", res.Pagination.Total,
		"page", res.Pagination.Page,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table.Serialize(def, st, res), nil
}
