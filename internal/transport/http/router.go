// Package httptransport is the thin HTTP layer. Handlers parse requests,
// delegate to the casework service, and translate domain errors; business
// logic stays below.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casework/pkg/platform/middleware/requesttime"
	"casework/pkg/platform/middleware/session"
)

// NewRouter wires every public endpoint.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(session.Middleware)

	h.Register(r)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
