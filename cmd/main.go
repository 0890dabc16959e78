package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kerucko/tasklist/internal/config"
	"github.com/kerucko/tasklist/internal/export"
	"github.com/kerucko/tasklist/internal/handlers"
	"github.com/kerucko/tasklist/internal/logger"
	"github.com/kerucko/tasklist/internal/repository"
	"github.com/kerucko/tasklist/internal/service/auth"
	"github.com/kerucko/tasklist/internal/service/tasks"
	"github.com/kerucko/tasklist/internal/utils"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for auth.password_hash and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := utils.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	// .env is optional
	_ = godotenv.Load()

	cfg := config.MustLoad()
	lg := logger.New(cfg.LogConfig, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	taskService, closeStorage, err := newTaskService(ctx, cfg, lg)
	if err != nil {
		lg.Error("failed to open storage", slog.String("driver", cfg.StorageConfig.Driver), slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStorage()

	h := handlers.NewHandler(taskService, export.NewExporter(taskService), lg)
	if cfg.AuthConfig.Enabled() {
		authManager := utils.NewAuthManager(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.TokenTTL)
		h = h.WithAuth(auth.NewService(cfg.AuthConfig.Operator, cfg.AuthConfig.PasswordHash, authManager), authManager)
	}

	srv := &http.Server{
		Addr:              cfg.ServerConfig.Addr(),
		Handler:           h.Routes(),
		ReadHeaderTimeout: cfg.ServerConfig.ReadHeaderTimeout,
		ErrorLog:          logger.Std(lg),
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("start listening",
			slog.String("addr", srv.Addr),
			slog.String("storage", cfg.StorageConfig.Driver),
			slog.Bool("auth", cfg.AuthConfig.Enabled()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server failed", slog.Any("err", err))
			closeStorage()
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerConfig.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", slog.Any("err", err))
		return
	}
	lg.Info("server stopped")
}

func newTaskService(ctx context.Context, cfg config.Config, lg *slog.Logger) (*tasks.Service, func(), error) {
	switch cfg.StorageConfig.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewConnection(ctx, cfg.PostgresConfig, lg)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return tasks.NewService(repository.NewTaskRepository(pool), nil), pool.Close, nil

	case config.DriverMySQL:
		db, err := repository.NewMySQL(ctx, cfg.MySQLConfig.DSN)
		if err != nil {
			return nil, nil, err
		}
		return tasks.NewService(repository.NewMySQLTaskRepository(db), nil), func() { _ = db.Close() }, nil

	default:
		return tasks.NewService(repository.NewMemoryTaskRepository(), nil), func() {}, nil
	}
}
