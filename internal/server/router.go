package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"integrals-api/internal/handlers"
	"integrals-api/internal/integrals"
	"integrals-api/internal/observability"
)

// NewRouter assembles the HTTP surface: the calculation endpoint, health and
// metrics probes, and the static front end served from staticDir.
func NewRouter(staticDir string) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	integrals.RegisterRoutes(r)

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return r
}
