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

const (
	// ProjectsKey is the key the project collection is stored under
	ProjectsKey = "projects"

	// ProjectsInitializedKey marks that the default projects have been seeded,
	// so an empty collection afterwards is the user's doing.
	ProjectsInitializedKey = "projects.initialized"
)

type projectRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	CreatedAt   string `json:"createdAt"`
	Active      bool   `json:"active"`
}

func encodeProject(p models.Project) projectRecord {
	return projectRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		CreatedAt:   formatTime(p.CreatedAt),
		Active:      p.Active,
	}
}

func decodeProject(r projectRecord) (models.Project, error) {
	createdAt, err := parseTime("createdAt", r.CreatedAt)
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		CreatedAt:   createdAt,
		Active:      r.Active,
	}, nil
}

// DefaultProjects returns the projects a fresh store is seeded with
func DefaultProjects(now time.Time) []models.Project {
	return []models.Project{
		{
			ID:          "1",
			Name:        "Website Redesign",
			Description: "Complete redesign of the company website",
			Color:       "#3B82F6",
			CreatedAt:   now,
			Active:      true,
		},
		{
			ID:          "2",
			Name:        "Mobile App",
			Description: "Mobile application development",
			Color:       "#10B981",
			CreatedAt:   now,
			Active:      true,
		},
		{
			ID:          "3",
			Name:        "API Integration",
			Description: "Integration with third-party APIs",
			Color:       "#F59E0B",
			CreatedAt:   now,
			Active:      true,
		},
	}
}

// ProjectRepository persists projects as a single JSON collection
type ProjectRepository struct {
	mu    sync.Mutex
	store kv.Store
	opts  options
}

// NewProjectRepository creates a project repository backed by store
func NewProjectRepository(store kv.Store, opts ...Option) *ProjectRepository {
	return &ProjectRepository{store: store, opts: buildOptions(opts)}
}

// load returns the stored projects, seeding the defaults on first use.
func (r *ProjectRepository) load(ctx context.Context) ([]models.Project, error) {
	projects, found, err := loadCollection(ctx, r.store, ProjectsKey, decodeProject)
	if err != nil {
		var cerr *models.CorruptionError
		if errors.As(err, &cerr) {
			r.opts.reportCorruption(cerr)
			return DefaultProjects(r.opts.timestamp()), nil
		}
		return nil, err
	}

	_, initialized, err := r.store.Get(ctx, ProjectsInitializedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", models.ErrStorageReadFailed, ProjectsInitializedKey, err)
	}

	if !found {
		if initialized {
			return nil, nil
		}
		return r.seed(ctx), nil
	}

	if !initialized {
		// Collection written before the marker existed; never seed it.
		r.markInitialized(ctx)
	}
	return projects, nil
}

// seed persists the default projects and the initialization marker. Write
// failures are logged; the defaults are returned either way.
func (r *ProjectRepository) seed(ctx context.Context) []models.Project {
	defaults := DefaultProjects(r.opts.timestamp())
	if err := r.save(ctx, defaults); err != nil {
		r.opts.logger.Printf("seeding default projects: %v", err)
		return defaults
	}
	r.markInitialized(ctx)
	return defaults
}

func (r *ProjectRepository) markInitialized(ctx context.Context) {
	if err := r.store.Set(ctx, ProjectsInitializedKey, formatTime(r.opts.timestamp())); err != nil {
		r.opts.logger.Printf("writing %q marker: %v", ProjectsInitializedKey, err)
	}
}

func (r *ProjectRepository) save(ctx context.Context, projects []models.Project) error {
	return saveCollection(ctx, r.store, ProjectsKey, projects, encodeProject)
}

// FindAll returns every project in creation order
func (r *ProjectRepository) FindAll(ctx context.Context) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// FindByID returns the project with the given ID or models.ErrNotFound
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load(ctx)
	if err != nil {
		return models.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
}

// Create stores a new active project built from cmd
func (r *ProjectRepository) Create(ctx context.Context, cmd models.CreateProjectCommand) (models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load(ctx)
	if err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		ID:          r.opts.newID(),
		Name:        cmd.Name,
		Description: cmd.Description,
		Color:       cmd.Color,
		CreatedAt:   r.opts.timestamp(),
		Active:      true,
	}

	if err := r.save(ctx, append(projects, project)); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// Delete removes the project with the given ID. Missing IDs are ignored.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load(ctx)
	if err != nil {
		return err
	}

	if !slices.ContainsFunc(projects, func(p models.Project) bool { return p.ID == id }) {
		return nil
	}
	return r.save(ctx, slices.DeleteFunc(projects, func(p models.Project) bool { return p.ID == id }))
}
