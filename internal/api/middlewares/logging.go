package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

// RequestLogger tags every request with an id (taken from X-Request-ID or
// generated), puts a request scoped logger into the context and writes an
// access log line once the request is served.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		logFunc := func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(model.HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(model.HeaderRequestID, requestID)

			reqLog := log.With(slog.String(string(model.KeyContextRequestID), requestID))
			ctx := context.WithValue(r.Context(), model.KeyContextRequestID, requestID)
			ctx = logger.WithContext(ctx, reqLog)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLog.LogAttrs(ctx,
				slog.LevelInfo,
				"request served",
				slog.String("method", r.Method),
				slog.String("uri", r.RequestURI),
				slog.Int("status", ww.Status()),
				slog.Int("size", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		}
		return http.HandlerFunc(logFunc)
	}
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(model.KeyContextRequestID).(string)
	return id
}
