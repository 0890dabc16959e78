package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kerucko/tasklist/internal/models"
	"github.com/kerucko/tasklist/internal/repository"
)

type taskRepository interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	GetByID(ctx context.Context, id int64) (models.Task, error)
	GetAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (models.Task, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

type Service struct {
	repo taskRepository
	now  func() time.Time
}

// NewService builds the task store on top of r. A nil now uses the wall
// clock in UTC, truncated to the microsecond precision SQL backends keep.
func NewService(r taskRepository, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
	}
	return &Service{repo: r, now: now}
}

func (s *Service) List(ctx context.Context) ([]models.Task, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (models.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, mapRepoErr(err, id)
	}
	return t, nil
}

func (s *Service) Add(ctx context.Context, input models.NewTask) (models.Task, error) {
	if err := validateTitle(input.Title); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		Title:     input.Title,
		Completed: false,
		CreatedAt: s.now(),
	}
	if input.ID != nil {
		if *input.ID <= 0 {
			return models.Task{}, invalidf("id", "id must be a positive integer")
		}
		task.ID = *input.ID
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return models.Task{}, mapRepoErr(err, task.ID)
	}
	return created, nil
}

// Update merges patch onto the task with the given id. The id and creation
// time of a task never change.
func (s *Service) Update(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return models.Task{}, err
		}
	}

	updated, err := s.repo.Update(ctx, id, patch, s.now())
	if err != nil {
		return models.Task{}, mapRepoErr(err, id)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err, id)
	}
	return nil
}

// Clear empties the store. Meant for resetting state between tests.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// validateTitle rejects blank titles. Valid titles are stored as given.
func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return invalidf("title", "title is required")
	}
	return nil
}

func mapRepoErr(err error, id int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	case errors.Is(err, repository.ErrDuplicateID):
		return invalidf("id", "task with id %d already exists", id)
	case errors.Is(err, repository.ErrIDExhausted):
		return invalidf("id", "no task ids left above the largest stored id")
	default:
		return err
	}
}
