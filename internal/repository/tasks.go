package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tgienger/tasktrack/internal/kv"
	"github.com/tgienger/tasktrack/internal/models"
)

// TasksKey is the key the task collection is stored under
const TasksKey = "tasks"

type taskRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	ProjectID   string  `json:"projectId"`
	AssigneeID  string  `json:"assigneeId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	DueDate     *string `json:"dueDate,omitempty"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

func encodeTask(t models.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
		DueDate:     formatTimePtr(t.DueDate),
		CompletedAt: formatTimePtr(t.CompletedAt),
	}
}

func decodeTask(r taskRecord) (models.Task, error) {
	t := models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		ProjectID:   r.ProjectID,
		AssigneeID:  r.AssigneeID,
	}

	var err error
	if t.CreatedAt, err = parseTime("createdAt", r.CreatedAt); err != nil {
		return models.Task{}, err
	}
	if t.UpdatedAt, err = parseTime("updatedAt", r.UpdatedAt); err != nil {
		return models.Task{}, err
	}
	if t.DueDate, err = parseTimePtr("dueDate", r.DueDate); err != nil {
		return models.Task{}, err
	}
	if t.CompletedAt, err = parseTimePtr("completedAt", r.CompletedAt); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// TaskRepository persists tasks as a single JSON collection
type TaskRepository struct {
	mu    sync.Mutex
	store kv.Store
	opts  options
}

// NewTaskRepository creates a task repository backed by store
func NewTaskRepository(store kv.Store, opts ...Option) *TaskRepository {
	return &TaskRepository{store: store, opts: buildOptions(opts)}
}

// load returns the stored tasks in storage order. Corrupted payloads are
// reported and yield an empty collection.
func (r *TaskRepository) load(ctx context.Context) ([]models.Task, error) {
	tasks, _, err := loadCollection(ctx, r.store, TasksKey, decodeTask)
	if err != nil {
		var cerr *models.CorruptionError
		if errors.As(err, &cerr) {
			r.opts.reportCorruption(cerr)
			return nil, nil
		}
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) save(ctx context.Context, tasks []models.Task) error {
	return saveCollection(ctx, r.store, TasksKey, tasks, encodeTask)
}

// newestFirst orders tasks by creation time, most recent first. Ties keep
// storage order.
func newestFirst(tasks []models.Task) []models.Task {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return tasks
}

// FindAll returns every task, newest first
func (r *TaskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(tasks), nil
}

// FindByID returns the task with the given ID or models.ErrNotFound
func (r *TaskRepository) FindByID(ctx context.Context, id string) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return models.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, fmt.Errorf("task %s: %w", id, models.ErrNotFound)
}

// FindByFilter returns the tasks matching every set predicate of filter, newest first
func (r *TaskRepository) FindByFilter(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t) {
			matched = append(matched, t)
		}
	}
	return newestFirst(matched), nil
}

// Create stores a new TODO task built from cmd
func (r *TaskRepository) Create(ctx context.Context, cmd models.CreateTaskCommand) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	now := r.opts.timestamp()
	task := models.Task{
		ID:          r.opts.newID(),
		Title:       cmd.Title,
		Description: cmd.Description,
		Status:      models.StatusTodo,
		Priority:    cmd.Priority,
		ProjectID:   cmd.ProjectID,
		AssigneeID:  cmd.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     utcPtr(cmd.DueDate),
	}

	if err := r.save(ctx, append(tasks, task)); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update merges the fields present in cmd over the stored task. CompletedAt
// is stamped when the task moves into DONE and cleared when it leaves it.
func (r *TaskRepository) Update(ctx context.Context, cmd models.UpdateTaskCommand) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	idx := slices.IndexFunc(tasks, func(t models.Task) bool { return t.ID == cmd.ID })
	if idx == -1 {
		return models.Task{}, fmt.Errorf("task %s: %w", cmd.ID, models.ErrNotFound)
	}

	now := r.opts.timestamp()
	updated := applyUpdate(tasks[idx], cmd, now)
	tasks[idx] = updated

	if err := r.save(ctx, tasks); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

func applyUpdate(prev models.Task, cmd models.UpdateTaskCommand, now time.Time) models.Task {
	next := prev
	if cmd.Title != nil {
		next.Title = *cmd.Title
	}
	if cmd.Description != nil {
		next.Description = *cmd.Description
	}
	if cmd.Status != nil {
		next.Status = *cmd.Status
	}
	if cmd.Priority != nil {
		next.Priority = *cmd.Priority
	}
	if cmd.AssigneeID != nil {
		next.AssigneeID = *cmd.AssigneeID
	}
	if cmd.DueDate != nil {
		next.DueDate = utcPtr(cmd.DueDate)
	}
	next.UpdatedAt = now

	switch {
	case next.Status != models.StatusDone:
		next.CompletedAt = nil
	case prev.Status != models.StatusDone || prev.CompletedAt == nil:
		completed := now
		next.CompletedAt = &completed
	}
	return next
}

// Delete removes the task with the given ID. Missing IDs are ignored.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return err
	}

	if !containsID(tasks, id) {
		return nil
	}
	return r.save(ctx, slices.DeleteFunc(tasks, func(t models.Task) bool { return t.ID == id }))
}

// DeleteByProject removes every task that belongs to projectID and returns
// how many were removed.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	before := len(tasks)
	kept := slices.DeleteFunc(tasks, func(t models.Task) bool { return t.ProjectID == projectID })
	removed := before - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := r.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of stored tasks
func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	return r.CountByStatus(ctx, "")
}

// CountByStatus returns the number of tasks with the given status, or every
// task when status is empty.
func (r *TaskRepository) CountByStatus(ctx context.Context, status models.TaskStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	if status == "" {
		return len(tasks), nil
	}

	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

// StatusCounts tallies every status from a single read of the collection
func (r *TaskRepository) StatusCounts(ctx context.Context) (models.TaskStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.load(ctx)
	if err != nil {
		return models.TaskStatistics{}, err
	}

	stats := models.TaskStatistics{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.StatusTodo:
			stats.TodoCount++
		case models.StatusInProgress:
			stats.InProgressCount++
		case models.StatusInReview:
			stats.InReviewCount++
		case models.StatusDone:
			stats.DoneCount++
		}
	}
	return stats, nil
}

func containsID(tasks []models.Task, id string) bool {
	return slices.ContainsFunc(tasks, func(t models.Task) bool { return t.ID == id })
}
