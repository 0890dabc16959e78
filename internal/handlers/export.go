package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kerucko/tasklist/internal/export"
)

// ExportTasks serves GET /tasks/export?format=json|csv|pdf (json by default).
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	b, err := h.Exporter.Export(r.Context(), format)
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
