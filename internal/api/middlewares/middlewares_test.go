package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/observability"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

func TestRequestLogger(t *testing.T) {
	log := logger.New(slog.LevelInfo)

	var gotID string
	var gotLoggerFromCtx bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = RequestID(r.Context())
		gotLoggerFromCtx = logger.FromContext(r.Context()) != log
		w.WriteHeader(http.StatusTeapot)
	})
	h := RequestLogger(log)(next)

	t.Run("generated id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

		assert.Equal(t, http.StatusTeapot, rr.Code)
		_, err := uuid.Parse(gotID)
		require.NoError(t, err)
		assert.Equal(t, gotID, rr.Header().Get(model.HeaderRequestID))
		assert.True(t, gotLoggerFromCtx)
	})

	t.Run("propagated id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set(model.HeaderRequestID, "req-42")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "req-42", gotID)
		assert.Equal(t, "req-42", rr.Header().Get(model.HeaderRequestID))
	})
}

func TestMetrics(t *testing.T) {
	m := observability.NewMetrics()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ping", func(http.ResponseWriter, *http.Request) {})

	for _, path := range []string{"/api/users/1", "/api/users/2", "/ping"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/users/{id}", "404")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestDuration))
	assert.InDelta(t, 0, testutil.ToFloat64(m.HTTPRequestsInFlight), 0)
}

func TestLimit(t *testing.T) {
	sem := semaphore.New(1)
	h := Limit(sem, 10*time.Millisecond, slog.Default())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, sem.InUse())

	require.NoError(t, sem.Acquire(context.Background()))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	sem.Release()
}
