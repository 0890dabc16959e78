package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kerucko/tasklist/internal/models"
)

var taskColumns = []string{"id", "title", "completed", "created_at", "updated_at"}

const (
	pgUniqueViolation       = "23505"
	pgSequenceLimitExceeded = "2200H"

	maxGeneratedIDAttempts = 3
)

type TaskRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *TaskRepository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == 0 {
		query, args, err := r.builder.
			Insert("tasks").
			Columns("title", "completed", "created_at").
			Values(t.Title, t.Completed, t.CreatedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return models.Task{}, err
		}
		// nextval is not transactional, so a retry draws a fresh id.
		for attempt := 1; ; attempt++ {
			err := mapInsertErr(r.db.QueryRow(ctx, query, args...).Scan(&t.ID))
			if errors.Is(err, ErrDuplicateID) && attempt < maxGeneratedIDAttempts {
				continue
			}
			if err != nil {
				return models.Task{}, err
			}
			return t, nil
		}
	}

	// Explicit ids bypass the sequence, so it is moved past them in the same tx.
	query, args, err := r.builder.
		Insert("tasks").
		Columns("id", "title", "completed", "created_at").
		Values(t.ID, t.Title, t.Completed, t.CreatedAt).
		ToSql()
	if err != nil {
		return models.Task{}, err
	}
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('tasks', 'id'), (SELECT MAX(id) FROM tasks))`)
		return err
	})
	if err != nil {
		return models.Task{}, mapInsertErr(err)
	}
	return t, nil
}

// mapInsertErr translates constraint and sequence failures of an insert.
// A generated id can collide with an explicit one whose tx has not moved the
// sequence yet. A nil err stays nil.
func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicateID
	case pgSequenceLimitExceeded:
		return ErrIDExhausted
	default:
		return err
	}
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (models.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Task{}, err
	}

	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]models.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns...).
		From("tasks").
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (models.Task, error) {
	set := map[string]any{"updated_at": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	query, args, err := r.builder.
		Update("tasks").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, title, completed, created_at, updated_at").
		ToSql()
	if err != nil {
		return models.Task{}, err
	}

	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.builder.
		Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Clear(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE tasks RESTART IDENTITY`)
	return err
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if t.UpdatedAt != nil {
		u := t.UpdatedAt.UTC()
		t.UpdatedAt = &u
	}
	return t, nil
}
