// Package service holds the business rules that sit between callers and the
// repositories: command validation, existence checks, and aggregates.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/tgienger/tasktrack/internal/models"
)

// TaskStore is the persistence a TaskService needs
type TaskStore interface {
	FindAll(ctx context.Context) ([]models.Task, error)
	FindByID(ctx context.Context, id string) (models.Task, error)
	FindByFilter(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, cmd models.CreateTaskCommand) (models.Task, error)
	Update(ctx context.Context, cmd models.UpdateTaskCommand) (models.Task, error)
	Delete(ctx context.Context, id string) error
	StatusCounts(ctx context.Context) (models.TaskStatistics, error)
}

// TaskService validates task commands before handing them to the store
type TaskService struct {
	store TaskStore
	now   func() time.Time
}

// NewTaskService creates a TaskService. A nil clock means time.Now.
func NewTaskService(store TaskStore, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{store: store, now: now}
}

func (s *TaskService) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.store.FindAll(ctx)
}

// GetByID returns a single task. The id is required.
func (s *TaskService) GetByID(ctx context.Context, id string) (models.Task, error) {
	if strings.TrimSpace(id) == "" {
		return models.Task{}, models.Invalid("task id is required")
	}
	return s.store.FindByID(ctx, id)
}

func (s *TaskService) GetFiltered(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.store.FindByFilter(ctx, filter)
}

// Create validates cmd and stores a new task
func (s *TaskService) Create(ctx context.Context, cmd models.CreateTaskCommand) (models.Task, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	if cmd.Title == "" {
		return models.Task{}, models.Invalid("title is required")
	}
	if strings.TrimSpace(cmd.ProjectID) == "" {
		return models.Task{}, models.Invalid("project is required")
	}
	if strings.TrimSpace(cmd.AssigneeID) == "" {
		return models.Task{}, models.Invalid("assignee is required")
	}
	if cmd.Priority == "" {
		cmd.Priority = models.PriorityMedium
	}
	if !cmd.Priority.IsValid() {
		return models.Task{}, models.Invalid("unknown priority %q", cmd.Priority)
	}
	if err := s.checkDueDate(cmd.DueDate); err != nil {
		return models.Task{}, err
	}
	return s.store.Create(ctx, cmd)
}

// Update validates the fields present in cmd and applies them
func (s *TaskService) Update(ctx context.Context, cmd models.UpdateTaskCommand) (models.Task, error) {
	if strings.TrimSpace(cmd.ID) == "" {
		return models.Task{}, models.Invalid("task id is required")
	}
	if cmd.Title != nil {
		title := strings.TrimSpace(*cmd.Title)
		if title == "" {
			return models.Task{}, models.Invalid("title cannot be empty")
		}
		cmd.Title = &title
	}
	if cmd.Status != nil && !cmd.Status.IsValid() {
		return models.Task{}, models.Invalid("unknown status %q", *cmd.Status)
	}
	if cmd.Priority != nil && !cmd.Priority.IsValid() {
		return models.Task{}, models.Invalid("unknown priority %q", *cmd.Priority)
	}
	if cmd.AssigneeID != nil && strings.TrimSpace(*cmd.AssigneeID) == "" {
		return models.Task{}, models.Invalid("assignee cannot be empty")
	}
	if err := s.checkDueDate(cmd.DueDate); err != nil {
		return models.Task{}, err
	}
	return s.store.Update(ctx, cmd)
}

// Delete removes an existing task
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return models.Invalid("task id is required")
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Statistics returns per-status counts taken from one snapshot of the store
func (s *TaskService) Statistics(ctx context.Context) (models.TaskStatistics, error) {
	return s.store.StatusCounts(ctx)
}

func (s *TaskService) checkDueDate(due *time.Time) error {
	if due != nil && due.Before(s.now()) {
		return models.Invalid("due date %s is in the past", due.Format(time.DateOnly))
	}
	return nil
}
