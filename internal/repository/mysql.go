package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/kerucko/tasklist/internal/models"
)

const (
	mysqlDuplicateEntry    = 1062
	mysqlAutoIncReadFailed = 1467
)

type MySQLTaskRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

func NewMySQLTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create draws the insertion sequence number and inserts t in one
// transaction so both statements share a connection.
func (r *MySQLTaskRepository) Create(ctx context.Context, t models.Task) (models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE task_seq SET n = LAST_INSERT_ID(n + 1)`)
	if err != nil {
		return models.Task{}, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}

	insert := r.builder.Insert("tasks")
	if t.ID == 0 {
		insert = insert.Columns("seq", "title", "completed", "created_at").
			Values(seq, t.Title, t.Completed, t.CreatedAt)
	} else {
		insert = insert.Columns("id", "seq", "title", "completed", "created_at").
			Values(t.ID, seq, t.Title, t.Completed, t.CreatedAt)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return models.Task{}, err
	}

	res, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) {
			switch {
			// AUTO_INCREMENT at the top of BIGINT hands out the last value again.
			case t.ID == 0 && (myErr.Number == mysqlDuplicateEntry || myErr.Number == mysqlAutoIncReadFailed):
				return models.Task{}, ErrIDExhausted
			case myErr.Number == mysqlDuplicateEntry:
				return models.Task{}, ErrDuplicateID
			}
		}
		return models.Task{}, err
	}
	if t.ID == 0 {
		if t.ID, err = res.LastInsertId(); err != nil {
			return models.Task{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (r *MySQLTaskRepository) GetByID(ctx context.Context, id int64) (models.Task, error) {
	return r.getByID(ctx, r.db, id, false)
}

func (r *MySQLTaskRepository) GetAll(ctx context.Context) ([]models.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns...).
		From("tasks").
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanSQLTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update locks the row, applies patch and reads it back in one transaction;
// MySQL has no RETURNING.
func (r *MySQLTaskRepository) Update(ctx context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, err
	}
	defer tx.Rollback()

	t, err := r.getByID(ctx, tx, id, true)
	if err != nil {
		return models.Task{}, err
	}

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
		ToSql()
	if err != nil {
		return models.Task{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return models.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, err
	}

	patch.Apply(&t)
	t.UpdatedAt = &updatedAt
	return t, nil
}

func (r *MySQLTaskRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.builder.
		Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MySQLTaskRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE tasks`); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE task_seq SET n = 0`)
	return err
}

func (r *MySQLTaskRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *MySQLTaskRepository) getByID(ctx context.Context, q sqlQuerier, id int64, forUpdate bool) (models.Task, error) {
	sel := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		sel = sel.Suffix("FOR UPDATE")
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return models.Task{}, err
	}

	t, err := scanSQLTask(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLTask(s sqlScanner) (models.Task, error) {
	var (
		t         models.Task
		updatedAt sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Completed, &t.CreatedAt, &updatedAt); err != nil {
		return models.Task{}, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if updatedAt.Valid {
		u := updatedAt.Time.UTC()
		t.UpdatedAt = &u
	}
	return t, nil
}
