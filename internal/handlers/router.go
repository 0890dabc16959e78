package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kerucko/tasklist/internal/logger"
)

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.RequestLogger(h.Log))
	router.Use(middleware.Recoverer)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/", h.Welcome)
	router.Get("/healthz", h.Healthz)
	router.Get("/readyz", h.Readyz)

	if h.authEnabled() {
		router.Post("/auth/login", h.Login)
	}

	router.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Get("/export", h.ExportTasks)
		r.Get("/{id}", h.GetTask)

		r.Group(func(r chi.Router) {
			if h.authEnabled() {
				r.Use(h.AuthMiddleware)
			}
			r.Post("/", h.CreateTask)
			r.Put("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
		})
	})

	return router
}
