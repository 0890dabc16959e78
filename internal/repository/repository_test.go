package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kerucko/tasklist/internal/models"
)

type taskRepo interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	GetByID(ctx context.Context, id int64) (models.Task, error)
	GetAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (models.Task, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

var (
	_ taskRepo = (*MemoryTaskRepository)(nil)
	_ taskRepo = (*TaskRepository)(nil)
	_ taskRepo = (*MySQLTaskRepository)(nil)
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// runRepositoryContract exercises behavior every backend must share.
// newRepo must return an empty repository.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) taskRepo) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, models.Task{Title: "Buy milk", CreatedAt: baseTime})
		if err != nil {
			t.Fatalf("Create() err=%v, want nil", err)
		}
		if created.ID <= 0 {
			t.Fatalf("Create() id=%d, want > 0", created.ID)
		}

		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID() err=%v, want nil", err)
		}
		if got.ID != created.ID || got.Title != "Buy milk" || got.Completed {
			t.Fatalf("GetByID()=%+v, want %+v", got, created)
		}
		if !got.CreatedAt.Equal(baseTime) {
			t.Fatalf("CreatedAt=%s, want %s", got.CreatedAt, baseTime)
		}
		if got.UpdatedAt != nil {
			t.Fatalf("UpdatedAt=%v, want nil", got.UpdatedAt)
		}
	})

	t.Run("GeneratedIDsIncrease", func(t *testing.T) {
		repo := newRepo(t)

		first, _ := repo.Create(ctx, models.Task{Title: "a", CreatedAt: baseTime})
		second, _ := repo.Create(ctx, models.Task{Title: "b", CreatedAt: baseTime})
		if second.ID <= first.ID {
			t.Fatalf("ids %d then %d, want strictly increasing", first.ID, second.ID)
		}
	})

	t.Run("ExplicitIDAndDuplicate", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, models.Task{ID: 42, Title: "explicit", CreatedAt: baseTime})
		if err != nil {
			t.Fatalf("Create() err=%v, want nil", err)
		}
		if created.ID != 42 {
			t.Fatalf("Create() id=%d, want 42", created.ID)
		}

		_, err = repo.Create(ctx, models.Task{ID: 42, Title: "again", CreatedAt: baseTime})
		if !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("Create() err=%v, want %v", err, ErrDuplicateID)
		}

		next, err := repo.Create(ctx, models.Task{Title: "generated", CreatedAt: baseTime})
		if err != nil {
			t.Fatalf("Create() err=%v, want nil", err)
		}
		if next.ID <= 42 {
			t.Fatalf("generated id=%d, want > 42", next.ID)
		}
	})

	t.Run("GetAllKeepsInsertionOrder", func(t *testing.T) {
		repo := newRepo(t)

		var want []int64
		for i, title := range []string{"one", "two", "three"} {
			created, err := repo.Create(ctx, models.Task{Title: title, CreatedAt: baseTime.Add(time.Duration(i) * time.Second)})
			if err != nil {
				t.Fatalf("Create() err=%v, want nil", err)
			}
			want = append(want, created.ID)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() err=%v, want nil", err)
		}
		if len(all) != len(want) {
			t.Fatalf("GetAll() len=%d, want %d", len(all), len(want))
		}
		for i := range want {
			if all[i].ID != want[i] {
				t.Fatalf("GetAll()[%d].ID=%d, want %d", i, all[i].ID, want[i])
			}
		}
	})

	t.Run("GetAllKeepsInsertionOrderWithExplicitIDs", func(t *testing.T) {
		repo := newRepo(t)

		high, err := repo.Create(ctx, models.Task{ID: 10, Title: "ten", CreatedAt: baseTime})
		if err != nil {
			t.Fatalf("Create() err=%v, want nil", err)
		}
		generated, err := repo.Create(ctx, models.Task{Title: "generated", CreatedAt: baseTime})
		if err != nil {
			t.Fatalf("Create() err=%v, want nil", err)
		}
		low, err := repo.Create(ctx, models.Task{ID: 5, Title: "five", CreatedAt: baseTime})
		if err != nil {
			t.Fatalf("Create() err=%v, want nil", err)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() err=%v, want nil", err)
		}
		want := []int64{high.ID, generated.ID, low.ID}
		if len(all) != len(want) {
			t.Fatalf("GetAll() len=%d, want %d", len(all), len(want))
		}
		for i := range want {
			if all[i].ID != want[i] {
				t.Fatalf("GetAll()[%d].ID=%d, want %d", i, all[i].ID, want[i])
			}
		}
	})

	t.Run("GeneratedIDsExhausted", func(t *testing.T) {
		repo := newRepo(t)

		if _, err := repo.Create(ctx, models.Task{ID: math.MaxInt64, Title: "max", CreatedAt: baseTime}); err != nil {
			t.Fatalf("Create(max id) err=%v, want nil", err)
		}

		next, err := repo.Create(ctx, models.Task{Title: "next", CreatedAt: baseTime})
		if !errors.Is(err, ErrIDExhausted) {
			t.Fatalf("Create() task=%+v err=%v, want %v", next, err, ErrIDExhausted)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() err=%v, want nil", err)
		}
		if len(all) != 1 || all[0].ID != math.MaxInt64 {
			t.Fatalf("GetAll()=%+v, want only the max id task", all)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)

		created, _ := repo.Create(ctx, models.Task{Title: "Write tests", CreatedAt: baseTime})
		done := true
		at := baseTime.Add(time.Hour)

		updated, err := repo.Update(ctx, created.ID, models.TaskPatch{Completed: &done}, at)
		if err != nil {
			t.Fatalf("Update() err=%v, want nil", err)
		}
		if !updated.Completed || updated.Title != "Write tests" {
			t.Fatalf("Update()=%+v, want completed with old title", updated)
		}
		if updated.ID != created.ID || !updated.CreatedAt.Equal(baseTime) {
			t.Fatalf("Update() changed identity: %+v", updated)
		}
		if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(at) {
			t.Fatalf("UpdatedAt=%v, want %s", updated.UpdatedAt, at)
		}

		got, _ := repo.GetByID(ctx, created.ID)
		if !got.Completed || got.UpdatedAt == nil {
			t.Fatalf("GetByID() after Update=%+v", got)
		}
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(ctx, 9999, models.TaskPatch{}, baseTime)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Update() err=%v, want %v", err, ErrNotFound)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)

		created, _ := repo.Create(ctx, models.Task{Title: "gone", CreatedAt: baseTime})
		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() err=%v, want nil", err)
		}
		if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetByID() err=%v, want %v", err, ErrNotFound)
		}
		if err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("second Delete() err=%v, want %v", err, ErrNotFound)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := newRepo(t)

		_, _ = repo.Create(ctx, models.Task{Title: "a", CreatedAt: baseTime})
		_, _ = repo.Create(ctx, models.Task{Title: "b", CreatedAt: baseTime})
		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("Clear() err=%v, want nil", err)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() err=%v, want nil", err)
		}
		if len(all) != 0 {
			t.Fatalf("GetAll() len=%d after Clear, want 0", len(all))
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := newRepo(t).Ping(ctx); err != nil {
			t.Fatalf("Ping() err=%v, want nil", err)
		}
	})
}
