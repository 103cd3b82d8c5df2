package app

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tablekit/internal/api"
	"tablekit/internal/middleware"
)

// Router builds the HTTP handler. Background work started for the router
// (rate-limiter cleanup) stops when ctx is done.
func (a *App) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(a.logger.With("component", "http")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.NewHandler(a.Tables, a.logger.With("component", "api"))
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		}))
		handler.Routes(r)
	})
	return r
}
