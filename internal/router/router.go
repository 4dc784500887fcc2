package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-users/internal/api/middlewares"
	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/observability"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

type CustomRouter struct {
	router  *chi.Mux
	logger  *slog.Logger
	metrics *observability.Metrics
	limit   *semaphore.Semaphore
}

// New creates a router. log and metrics are optional; the matching
// middlewares and the /metrics endpoint are skipped when they are nil.
func New(log *slog.Logger, metrics *observability.Metrics) *CustomRouter {
	router := &CustomRouter{
		router:  chi.NewRouter(),
		logger:  log,
		metrics: metrics,
	}

	return router
}

// WithLimit caps the number of requests served at once. Zero means no cap.
func (cr *CustomRouter) WithLimit(maxInFlight uint64) *CustomRouter {
	if maxInFlight > 0 {
		cr.limit = semaphore.New(maxInFlight)
	}
	return cr
}

type UserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Find(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type PageHandler interface {
	Home(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	MyPage(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	UserHandler
	HealthHandler
	PageHandler
}

func (cr *CustomRouter) SetRouter(h Handler) {
	if cr.logger != nil {
		cr.router.Use(middlewares.RequestLogger(cr.logger))
	}
	if cr.metrics != nil {
		cr.router.Use(middlewares.Metrics(cr.metrics))
	}
	cr.router.Use(middleware.Recoverer)
	if cr.limit != nil {
		log := cr.logger
		if log == nil {
			log = slog.Default()
		}
		cr.router.Use(middlewares.Limit(cr.limit, model.DefaultTimeout, log))
	}

	cr.router.Route("/api/users", func(r chi.Router) {
		r.With(middleware.AllowContentType(model.ContentTypeJSON)).
			Post("/", h.Create)
		r.Get("/", h.Find)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.With(middleware.AllowContentType(model.ContentTypeJSON)).
				Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
	cr.router.Get("/ping", h.Ping)

	cr.router.Get("/home", h.Home)
	cr.router.Get("/list", h.List)
	cr.router.Get("/mypage", h.MyPage)

	if cr.metrics != nil {
		cr.router.Method(http.MethodGet, "/metrics", cr.metrics.Handler())
	}

	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w,
			http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}
