// Package app is the single entry point the CLI and the TUI drive. It wires
// the repositories and domain services over one kv.Store and applies the
// cross-entity rules neither service can check on its own.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tgienger/tasktrack/internal/config"
	"github.com/tgienger/tasktrack/internal/kv"
	"github.com/tgienger/tasktrack/internal/models"
	"github.com/tgienger/tasktrack/internal/repository"
	"github.com/tgienger/tasktrack/internal/service"
)

// Options configures a Service. The zero value is usable.
type Options struct {
	Logger       *log.Logger
	Now          func() time.Time
	NewID        func() string
	DeletePolicy config.DeletePolicy
}

// Service orchestrates tasks, projects and users
type Service struct {
	store    kv.Store
	taskRepo *repository.TaskRepository
	tasks    *service.TaskService
	projects *service.ProjectService
	users    *repository.UserDirectory
	policy   config.DeletePolicy
	logger   *log.Logger

	mu       sync.Mutex
	warnings []*models.CorruptionError
}

// New builds a Service over store
func New(store kv.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DeletePolicy == "" {
		opts.DeletePolicy = config.DeleteRestrict
	}

	s := &Service{
		store:  store,
		users:  repository.NewUserDirectory(),
		policy: opts.DeletePolicy,
		logger: opts.Logger,
	}

	repoOpts := []repository.Option{
		repository.WithLogger(opts.Logger),
		repository.WithClock(opts.Now),
		repository.WithIDGenerator(opts.NewID),
		repository.WithCorruptionHandler(s.recordCorruption),
	}
	s.taskRepo = repository.NewTaskRepository(store, repoOpts...)
	s.tasks = service.NewTaskService(s.taskRepo, opts.Now)
	s.projects = service.NewProjectService(repository.NewProjectRepository(store, repoOpts...))
	return s
}

func (s *Service) recordCorruption(cerr *models.CorruptionError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, cerr)
}

// StorageWarnings returns and clears the corruption reports collected since
// the last call.
func (s *Service) StorageWarnings() []*models.CorruptionError {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.warnings
	s.warnings = nil
	return w
}

// DeletePolicy returns the policy applied by DeleteProject
func (s *Service) DeletePolicy() config.DeletePolicy {
	return s.policy
}

func (s *Service) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	return s.tasks.GetAll(ctx)
}

func (s *Service) GetTask(ctx context.Context, id string) (models.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) GetFilteredTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.tasks.GetFiltered(ctx, filter)
}

// CreateTask creates a task after checking that its project exists
func (s *Service) CreateTask(ctx context.Context, cmd models.CreateTaskCommand) (models.Task, error) {
	if _, err := s.projects.GetByID(ctx, cmd.ProjectID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Task{}, fmt.Errorf("%w: %w", models.ErrReferenceNotFound, err)
		}
		return models.Task{}, err
	}
	task, err := s.tasks.Create(ctx, cmd)
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Printf("created task %s in project %s", task.ID, task.ProjectID)
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, cmd models.UpdateTaskCommand) (models.Task, error) {
	return s.tasks.Update(ctx, cmd)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

func (s *Service) GetTaskStatistics(ctx context.Context) (models.TaskStatistics, error) {
	return s.tasks.Statistics(ctx)
}

func (s *Service) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.GetAll(ctx)
}

func (s *Service) GetProject(ctx context.Context, id string) (models.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *Service) CreateProject(ctx context.Context, cmd models.CreateProjectCommand) (models.Project, error) {
	return s.projects.Create(ctx, cmd)
}

// DeleteProject deletes a project according to the configured policy. Under
// restrict it fails with models.ErrProjectInUse while tasks reference the
// project; under cascade those tasks are deleted first. It returns the
// number of tasks removed.
func (s *Service) DeleteProject(ctx context.Context, id string) (int, error) {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return 0, err
	}

	removed := 0
	switch s.policy {
	case config.DeleteCascade:
		n, err := s.taskRepo.DeleteByProject(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("delete tasks of project %s: %w", id, err)
		}
		removed = n
	default:
		refs, err := s.tasks.GetFiltered(ctx, models.TaskFilter{ProjectID: id})
		if err != nil {
			return 0, err
		}
		if len(refs) > 0 {
			return 0, fmt.Errorf("project %s has %d tasks: %w", id, len(refs), models.ErrProjectInUse)
		}
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return removed, err
	}
	s.logger.Printf("deleted project %s (%d tasks removed)", id, removed)
	return removed, nil
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) CurrentUser(ctx context.Context) (models.User, error) {
	return s.users.CurrentUser(ctx)
}

// Snapshot is everything a task screen needs, read in one round
type Snapshot struct {
	Tasks    []models.Task
	Projects []models.Project
	Users    []models.User
	Stats    models.TaskStatistics
}

// Load reads the filtered tasks, every project and user, and the task
// statistics concurrently. The first failure cancels the rest.
func (s *Service) Load(ctx context.Context, filter models.TaskFilter) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := s.tasks.GetFiltered(ctx, filter)
		snap.Tasks = tasks
		return err
	})
	g.Go(func() error {
		projects, err := s.projects.GetAll(ctx)
		snap.Projects = projects
		return err
	})
	g.Go(func() error {
		users, err := s.users.FindAll(ctx)
		snap.Users = users
		return err
	})
	g.Go(func() error {
		stats, err := s.tasks.Statistics(ctx)
		snap.Stats = stats
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Preference returns a UI setting stored alongside the collections. Missing
// settings are returned as "".
func (s *Service) Preference(ctx context.Context, key string) (string, error) {
	v, _, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %w", models.ErrStorageReadFailed, key, err)
	}
	return v, nil
}

// SetPreference stores a UI setting. An empty value removes it.
func (s *Service) SetPreference(ctx context.Context, key, value string) error {
	var err error
	if value == "" {
		err = s.store.Delete(ctx, key)
	} else {
		err = s.store.Set(ctx, key, value)
	}
	if err != nil {
		return fmt.Errorf("%w: write %q: %w", models.ErrStorageWriteFailed, key, err)
	}
	return nil
}

// ResetKeys lists every key tasktrack writes
var ResetKeys = []string{
	repository.TasksKey,
	repository.ProjectsKey,
	repository.ProjectsInitializedKey,
	LastProjectKey,
}

// LastProjectKey remembers the project the TUI last opened
const LastProjectKey = "ui.lastProject"

// Reset deletes all stored data. The default projects are seeded again on
// next access.
func (s *Service) Reset(ctx context.Context) error {
	for _, key := range ResetKeys {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("%w: delete %q: %w", models.ErrStorageWriteFailed, key, err)
		}
	}
	s.logger.Printf("reset all stored data")
	return nil
}
