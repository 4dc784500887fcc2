package ui

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigation(t *testing.T) {
	nav := string(Navigation())

	assert.True(t, strings.HasPrefix(nav, `<ul class="nav justify-content-end Navigation">`))
	assert.Equal(t, 3, strings.Count(nav, "<li "))

	home := strings.Index(nav, `href="/home">Home</a>`)
	list := strings.Index(nav, `href="/list">List</a>`)
	mypage := strings.Index(nav, `href="/mypage">MyPage</a>`)
	require.NotEqual(t, -1, home)
	require.NotEqual(t, -1, list)
	require.NotEqual(t, -1, mypage)
	assert.Less(t, home, list)
	assert.Less(t, list, mypage)

	assert.Equal(t, nav, string(Navigation()))
}

func TestPageHandler(t *testing.T) {
	h := NewPageHandler(slog.Default())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		title   string
	}{
		{"home", h.Home, "Home"},
		{"list", h.List, "List"},
		{"mypage", h.MyPage, "MyPage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.handler(rr, httptest.NewRequest(http.MethodGet, "/"+tt.name, http.NoBody))
			res := rr.Result()
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			require.NoError(t, res.Body.Close())

			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
			assert.Contains(t, string(body), "<title>"+tt.title+"</title>")
			assert.Contains(t, string(body), string(Navigation()))
		})
	}
}
