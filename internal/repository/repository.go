package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kerucko/tasklist/internal/config"
)

var (
	ErrNotFound    = errors.New("not found in database")
	ErrDuplicateID = errors.New("id already exists")
	ErrIDExhausted = errors.New("no task ids left")
)

// seq records insertion order; explicit ids make id order differ from it.
const postgresSchema = `CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    seq BIGINT GENERATED ALWAYS AS IDENTITY UNIQUE,
    title TEXT NOT NULL CHECK (title <> ''),
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NULL
)`

// MySQL allows one AUTO_INCREMENT column per table, so seq is drawn from the
// single-row task_seq counter instead.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    seq BIGINT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at DATETIME(6) NOT NULL,
    updated_at DATETIME(6) NULL
)`,
	`CREATE TABLE IF NOT EXISTS task_seq (n BIGINT NOT NULL)`,
	`INSERT INTO task_seq (n) SELECT 0 FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM task_seq)`,
}

// NewConnection retries until postgres answers a ping or cfg.Timeout expires.
func NewConnection(ctx context.Context, cfg config.PostgresConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	deadline := time.After(cfg.Timeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn, err := pgxpool.New(ctx, cfg.DSN())
			if err != nil {
				log.Debug("postgres pool not ready", slog.Any("err", err))
				continue
			}
			if err = conn.Ping(ctx); err != nil {
				conn.Close()
				log.Debug("postgres ping failed", slog.Any("err", err))
				continue
			}
			log.Info("successful database connection", slog.String("driver", config.DriverPostgres))
			return conn, nil

		case <-deadline:
			return nil, fmt.Errorf("unable to connect to database")

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func MigratePostgres(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// NewMySQL opens dsn and creates the tasks table. dsn must carry parseTime=true.
func NewMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(config.DriverMySQL, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	for _, stmt := range mysqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate mysql: %w", err)
		}
	}
	return db, nil
}
