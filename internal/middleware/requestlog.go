// internal/middleware/requestlog.go
//
// Access log + Prometheus instrumentation.
//
// Context
// -------
// Sits directly inside chi's RequestID and RealIP middleware.  After the
// handler returns it:
//
//  1. Writes one INFO line (method, route, path, status, bytes, duration,
//     request id, remote address, client class) through the global zap
//     logger.
//  2. Increments petit_http_requests_total{route,code} and observes
//     petit_http_request_duration_seconds{route}.
//
// Notes
// -----
// • The route label is chi's matched pattern (`/api/blogs/{slug}`), never
//   the raw path, so label cardinality stays bounded.  Unmatched requests
//   are labelled "unmatched".

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joel-cespedes/petit/internal/metrics"
	"github.com/joel-cespedes/petit/internal/ua"
)

// RequestLog logs and measures every request.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		took := time.Since(start)
		client := ua.Classify(r.UserAgent())

		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(took.Seconds())

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", took),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("remote", r.RemoteAddr),
			zap.String("browser", client.Browser),
			zap.String("device", client.Device),
			zap.Bool("bot", client.Bot),
		)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
