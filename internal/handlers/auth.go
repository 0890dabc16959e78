package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kerucko/tasklist/internal/models"
	"github.com/kerucko/tasklist/internal/service/auth"
	"github.com/kerucko/tasklist/internal/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginRequest
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	token, err := h.AuthService.Login(r.Context(), input)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthorized) {
			h.Log.Error("login failed", slog.Any("err", err))
		}
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token})
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tokenStr == "" {
			unauthorized(w)
			return
		}

		claims, err := h.Auth.ParseToken(tokenStr)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), utils.ContextClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="tasks"`)
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}
