package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/tgienger/tasktrack/internal/models"
)

// ProjectStore is the persistence a ProjectService needs
type ProjectStore interface {
	FindAll(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (models.Project, error)
	Create(ctx context.Context, cmd models.CreateProjectCommand) (models.Project, error)
	Delete(ctx context.Context, id string) error
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ProjectService validates project commands before handing them to the store
type ProjectService struct {
	store ProjectStore
}

func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

func (s *ProjectService) GetAll(ctx context.Context) ([]models.Project, error) {
	return s.store.FindAll(ctx)
}

// GetByID returns a single project. The id is required.
func (s *ProjectService) GetByID(ctx context.Context, id string) (models.Project, error) {
	if strings.TrimSpace(id) == "" {
		return models.Project{}, models.Invalid("project id is required")
	}
	return s.store.FindByID(ctx, id)
}

// Create validates cmd and stores a new project
func (s *ProjectService) Create(ctx context.Context, cmd models.CreateProjectCommand) (models.Project, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Color = strings.TrimSpace(cmd.Color)
	if cmd.Name == "" {
		return models.Project{}, models.Invalid("project name is required")
	}
	if cmd.Color == "" {
		return models.Project{}, models.Invalid("project color is required")
	}
	if !hexColor.MatchString(cmd.Color) {
		return models.Project{}, models.Invalid("color %q is not a hex color like #3B82F6", cmd.Color)
	}
	return s.store.Create(ctx, cmd)
}

// Delete removes an existing project
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
