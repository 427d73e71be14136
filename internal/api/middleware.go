package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/runnerr0/travelpins/internal/logging"
	"github.com/runnerr0/travelpins/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDWithLogging tags each request with an id, reusing the caller's
// X-Request-ID when present, and puts it on the logging context.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set(RequestIDHeader, requestID)
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs and times every request by route pattern.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := routePattern(r)
			metrics.RecordHTTP(route, r.Method, ww.Status(), elapsed)

			event := logging.Ctx(r.Context()).Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = logging.Ctx(r.Context()).Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", elapsed).
				Str("remote", r.RemoteAddr).
				Msg("http request")
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// CORS returns the cross-origin middleware for the configured origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition"},
		MaxAge:         86400,
	})
}

// RateLimit limits requests per client IP. requests <= 0 disables it.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}
