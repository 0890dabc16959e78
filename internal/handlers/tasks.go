package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kerucko/tasklist/internal/models"
	"github.com/kerucko/tasklist/internal/service/tasks"
)

const welcomeBanner = "Welcome to the Task List API!"

func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(welcomeBanner))
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	all, err := h.TaskService.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusNotFound, tasks.ErrNotFound.Error())
		return
	}

	task, err := h.TaskService.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input models.NewTask
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.TaskService.Add(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTask merges the body onto the task. Fields other than title and
// completed, id and createdAt included, are ignored.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusNotFound, tasks.ErrNotFound.Error())
		return
	}

	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.TaskService.Update(r.Context(), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusNotFound, tasks.ErrNotFound.Error())
		return
	}

	if err := h.TaskService.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps store errors onto statuses: not found is 404,
// everything else, validation included, is 400 with the error message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		writeError(w, http.StatusNotFound, tasks.ErrNotFound.Error())
	case errors.Is(err, tasks.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("task store failure",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
