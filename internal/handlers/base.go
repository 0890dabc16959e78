package handlers

import (
	"context"
	"log/slog"

	"github.com/kerucko/tasklist/internal/models"
)

type taskService interface {
	List(ctx context.Context) ([]models.Task, error)
	GetByID(ctx context.Context, id int64) (models.Task, error)
	Add(ctx context.Context, input models.NewTask) (models.Task, error)
	Update(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type exporter interface {
	Export(ctx context.Context, format string) ([]byte, error)
}

type authService interface {
	Login(ctx context.Context, input models.LoginRequest) (string, error)
}

type tokenParser interface {
	ParseToken(tokenStr string) (*models.Claims, error)
}

type Handler struct {
	TaskService taskService
	Exporter    exporter
	AuthService authService
	Auth        tokenParser
	Log         *slog.Logger
}

func NewHandler(ts taskService, ex exporter, log *slog.Logger) *Handler {
	return &Handler{
		TaskService: ts,
		Exporter:    ex,
		Log:         log,
	}
}

// WithAuth protects mutating task routes with bearer tokens issued by
// POST /auth/login.
func (h *Handler) WithAuth(as authService, auth tokenParser) *Handler {
	h.AuthService = as
	h.Auth = auth
	return h
}

func (h *Handler) authEnabled() bool {
	return h.AuthService != nil && h.Auth != nil
}
