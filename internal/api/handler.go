// Package api provides the HTTP handlers for the table REST API.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablekit/internal/domain"
	"tablekit/internal/table"
)

// maxBodyBytes caps POST query bodies.
const maxBodyBytes = 1 << 20

// TableService is the subset of the table service the handlers need.
type TableService interface {
	Tables() []string
	Describe(name string) (map[string]any, error)
	Render(ctx context.Context, name string, raw table.RawParams) (map[string]any, error)
}

// Handler serves the table endpoints.
type Handler struct {
	tables TableService
	logger *slog.Logger
}

// NewHandler creates a Handler over svc.
func NewHandler(svc TableService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{tables: svc, logger: logger}
}

// Routes mounts the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tables", h.ListTables)
	r.Get("/tables/{name}", h.GetTable)
	r.Get("/tables/{name}/definition", h.GetDefinition)
	r.Post("/tables/{name}/query", h.QueryTable)
}

// ListTables handles GET /tables.
func (h *Handler) ListTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tables": h.tables.Tables()})
}

// GetDefinition handles GET /tables/{name}/definition.
func (h *Handler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := h.tables.Describe(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// GetTable handles GET /tables/{name} with parameters in the query string.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ParseQuery(r.URL.Query()))
}

// QueryTable handles POST /tables/{name}/query with a JSON body.
func (h *Handler) QueryTable(w http.ResponseWriter, r *http.Request) {
	var raw table.RawParams
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	h.render(w, r, raw)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, raw table.RawParams) {
	payload, err := h.tables.Render(r.Context(), chi.URLParam(r, "name"), raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
