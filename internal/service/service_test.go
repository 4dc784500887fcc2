package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/service/config"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{"postgres://u:p@localhost:5432/users", backendPostgres, false},
		{"postgresql://localhost/users", backendPostgres, false},
		{"sqlite://users.db", backendSQLite, false},
		{"sqlite://:memory:", backendSQLite, false},
		{"file:users.db?cache=shared", backendSQLite, false},
		{"data/users.db", backendSQLite, false},
		{"mysql://localhost/users", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := backendFor(tt.dsn)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUnknownBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		RunAddr:         "127.0.0.1:0",
		DatabaseURI:     "sqlite://:memory:",
		LogLevel:        "debug",
		ShutdownTimeout: 5 * time.Second,
		MaxInFlight:     8,
	}
	srv, closeStore, err := initService(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(closeStore)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, body string) (int, string) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp.StatusCode, string(data)
}

func TestService_userLifecycle(t *testing.T) {
	ts := newTestServer(t)

	code, body := call(t, ts, http.MethodPost, "/api/users",
		`{"username":"alice","email":"alice@x.com","password":"h1"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"id":1}`, body)

	code, body = call(t, ts, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"username":"alice","email":"alice@x.com"}`, body)

	code, _ = call(t, ts, http.MethodPost, "/api/users",
		`{"username":"mallory","email":"alice@x.com","password":"h2"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, ts, http.MethodPut, "/api/users/1",
		`{"username":"alice2","email":"alice@x.com","password":"h1"}`)
	require.Equal(t, http.StatusNoContent, code)

	code, body = call(t, ts, http.MethodGet, "/api/users?email=alice@x.com", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"username":"alice2","email":"alice@x.com"}`, body)

	code, _ = call(t, ts, http.MethodDelete, "/api/users/1", "")
	require.Equal(t, http.StatusNoContent, code)

	code, _ = call(t, ts, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, ts, http.MethodDelete, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, ts, http.MethodPut, "/api/users/1",
		`{"username":"ghost","email":"ghost@x.com","password":"h"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestService_ambientRoutes(t *testing.T) {
	ts := newTestServer(t)

	code, _ := call(t, ts, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, code)

	code, body := call(t, ts, http.MethodGet, "/home", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<ul class="nav justify-content-end Navigation">`)

	code, _ = call(t, ts, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusNotFound, code)

	code, body = call(t, ts, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `user_store_operations_total{operation="get_by_id",result="miss"} 1`)
}

func TestInitService_badDSN(t *testing.T) {
	cfg := &config.Config{
		DatabaseURI:     "mysql://localhost/users",
		ShutdownTimeout: time.Second,
	}
	_, _, err := initService(context.Background(), cfg, slog.Default())
	assert.ErrorIs(t, err, errUnknownBackend)
}

func TestInitService_timeouts(t *testing.T) {
	cfg := &config.Config{
		RunAddr:         "127.0.0.1:0",
		DatabaseURI:     "sqlite://:memory:",
		ShutdownTimeout: time.Minute,
	}
	srv, closeStore, err := initService(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(closeStore)

	assert.Equal(t, model.DefaultReadHeaderTimeout, srv.ReadHeaderTimeout)
}

func TestService_storeErrorLogHasRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{
		RunAddr:         "127.0.0.1:0",
		DatabaseURI:     "sqlite://:memory:",
		ShutdownTimeout: time.Second,
		MaxInFlight:     8,
	}
	srv, closeStore, err := initService(context.Background(), cfg, log)
	require.NoError(t, err)
	closeStore()

	req := httptest.NewRequest(http.MethodGet, "/api/users/1", http.NoBody)
	req.Header.Set(model.HeaderRequestID, "req-closed-store")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var errLines int
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, `msg="failed to find user`) {
			continue
		}
		errLines++
		assert.Contains(t, line, "request_id=req-closed-store")
	}
	assert.Equal(t, 2, errLines)
}

func TestServe_gracefulShutdown(t *testing.T) {
	cfg := &config.Config{ShutdownTimeout: time.Second}
	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, cfg, slog.Default()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
