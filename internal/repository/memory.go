package repository

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/kerucko/tasklist/internal/models"
)

// MemoryTaskRepository keeps tasks in insertion order for the lifetime of
// the process.
type MemoryTaskRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  []models.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{}
}

// Create stores t. A zero t.ID is replaced by the next id of a strictly
// increasing sequence that never falls below an id already stored.
func (r *MemoryTaskRepository) Create(_ context.Context, t models.Task) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == 0 {
		if r.nextID == math.MaxInt64 {
			return models.Task{}, ErrIDExhausted
		}
		r.nextID++
		t.ID = r.nextID
	} else {
		if r.indexOf(t.ID) >= 0 {
			return models.Task{}, ErrDuplicateID
		}
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}

	r.tasks = append(r.tasks, t)
	return detach(t), nil
}

func (r *MemoryTaskRepository) GetByID(_ context.Context, id int64) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}
	return detach(r.tasks[i]), nil
}

func (r *MemoryTaskRepository) GetAll(_ context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, detach(t))
	}
	return out, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}

	t := r.tasks[i]
	patch.Apply(&t)
	t.UpdatedAt = &updatedAt
	r.tasks[i] = t
	return detach(t), nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

func (r *MemoryTaskRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = nil
	r.nextID = 0
	return nil
}

func (r *MemoryTaskRepository) Ping(_ context.Context) error {
	return nil
}

// indexOf must be called with r.mu held.
func (r *MemoryTaskRepository) indexOf(id int64) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// detach copies the pointer fields of t so callers never alias stored state.
func detach(t models.Task) models.Task {
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		t.UpdatedAt = &u
	}
	return t
}
