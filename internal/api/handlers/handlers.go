package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talx-hub/gopher-users/internal/api/dto"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

const URLParamID = "id"

type UserHandler struct {
	logger *slog.Logger
	repo   user.Repository
}

func NewUserHandler(repo user.Repository, log *slog.Logger) *UserHandler {
	return &UserHandler{
		logger: log,
		repo:   repo,
	}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if !h.decodeUser(w, r, &req) {
		return
	}

	id, err := h.repo.Insert(r.Context(), req.ToUser())
	if err != nil {
		h.writeStoreError(w, r, "failed to create user", err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	h.writeUser(w, r, u, err)
}

// Find looks a user up by the email query parameter.
func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	u, err := h.repo.GetByEmail(r.Context(), email)
	h.writeUser(w, r, u, err)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req dto.UserRequest
	if !h.decodeUser(w, r, &req) {
		return
	}
	req.ID = id

	if err := h.repo.Update(r.Context(), req.ToUser()); err != nil {
		h.writeStoreError(w, r, "failed to update user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// log prefers the request-scoped logger installed by the logging middleware.
func (h *UserHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOr(r.Context(), h.logger)
}

func (h *UserHandler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, URLParamID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.log(r).LogAttrs(r.Context(),
			slog.LevelDebug,
			"invalid user id",
			slog.String("id", raw),
		)
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) decodeUser(w http.ResponseWriter, r *http.Request, req *dto.UserRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.log(r).LogAttrs(r.Context(),
			slog.LevelError,
			"failed to decode user request",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "failed to decode request", http.StatusBadRequest)
		return false
	}
	if err := req.IsValid(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *UserHandler) writeUser(w http.ResponseWriter, r *http.Request, u *user.User, err error) {
	if err != nil {
		h.writeStoreError(w, r, "failed to find user", err)
		return
	}
	if u == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewUserResponse(u))
}

func (h *UserHandler) writeStoreError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, serviceerrs.ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, serviceerrs.ErrAlreadyExists):
		http.Error(w, "user already exists", http.StatusConflict)
	default:
		h.log(r).LogAttrs(r.Context(),
			slog.LevelError,
			msg,
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func (h *UserHandler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.log(r).LogAttrs(r.Context(),
			slog.LevelError,
			"failed to encode response",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set(model.HeaderContentType, model.ContentTypeJSON)
	w.WriteHeader(code)
	if _, err = w.Write(body); err != nil {
		h.log(r).LogAttrs(r.Context(),
			slog.LevelError,
			"failed to write response",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	logger *slog.Logger
	pinger Pinger
}

func NewHealthHandler(pinger Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger: log,
		pinger: pinger,
	}
}

func (h *HealthHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOr(r.Context(), h.logger)
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), model.DefaultTimeout)
	defer cancel()

	if err := h.pinger.PingContext(ctx); err != nil {
		h.log(r).LogAttrs(r.Context(),
			slog.LevelError,
			"store is unavailable",
			slog.Any(model.KeyLoggerError, fmt.Errorf("ping: %w", err)),
		)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
