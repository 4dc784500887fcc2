package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-users/internal/observability"
)

const unmatchedEndpoint = "unmatched"

// Metrics records request count, duration and in-flight requests. The
// endpoint label is the chi route pattern so ids in paths do not blow up
// label cardinality.
func Metrics(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		metricsFunc := func(w http.ResponseWriter, r *http.Request) {
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			endpoint := unmatchedEndpoint
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			m.HTTPRequestDuration.
				WithLabelValues(r.Method, endpoint).
				Observe(time.Since(start).Seconds())
			m.HTTPRequestsTotal.
				WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).
				Inc()
		}
		return http.HandlerFunc(metricsFunc)
	}
}
