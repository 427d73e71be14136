// Package api is the HTTP surface of travelpins: the trip CRUD endpoints,
// the place search proxy and the metrics endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the middleware settings of the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// NewRouter builds the chi router for h.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(RequestLogger())

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/health", h.Health)
		r.Get("/search", h.Search)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", h.ListTrips)
			r.Post("/", h.CreateTrip)
			r.Get("/export.json", h.ExportTrips)
			r.Get("/{id}", h.GetTrip)
			r.Put("/{id}", h.UpdateTrip)
			r.Delete("/{id}", h.DeleteTrip)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
