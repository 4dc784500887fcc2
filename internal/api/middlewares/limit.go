package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

// Limit caps the number of requests served at once. A request that cannot
// get a slot within wait is rejected with 503.
func Limit(sem *semaphore.Semaphore, wait time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limitFunc := func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), wait)
			err := sem.Acquire(ctx)
			cancel()
			if err != nil {
				log.LogAttrs(r.Context(),
					slog.LevelWarn,
					"too many requests in flight",
					slog.Any(model.KeyLoggerError, err),
				)
				http.Error(w,
					http.StatusText(http.StatusServiceUnavailable),
					http.StatusServiceUnavailable)
				return
			}
			defer sem.Release()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(limitFunc)
	}
}
