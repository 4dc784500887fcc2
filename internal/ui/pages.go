package ui

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  {{.Navigation}}
  <main><h1>{{.Title}}</h1></main>
</body>
</html>
`))

type PageHandler struct {
	logger *slog.Logger
}

func NewPageHandler(log *slog.Logger) *PageHandler {
	return &PageHandler{logger: log}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Home")
}

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "List")
}

func (h *PageHandler) MyPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "MyPage")
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, title string) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title      string
		Navigation template.HTML
	}{
		Title:      title,
		Navigation: Navigation(),
	})
	if err != nil {
		logger.FromContextOr(r.Context(), h.logger).LogAttrs(r.Context(),
			slog.LevelError,
			"failed to render page",
			slog.String("page", title),
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set(model.HeaderContentType, "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
