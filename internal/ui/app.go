package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tasktrack/internal/app"
	"github.com/tgienger/tasktrack/internal/models"
	"github.com/tgienger/tasktrack/internal/ui/styles"
	"github.com/tgienger/tasktrack/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
)

type App struct {
	svc         *app.Service
	styles      *styles.Styles
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	banner      string
	width       int
	height      int
}

// NewApp creates the root model over svc
func NewApp(svc *app.Service) *App {
	return &App{
		svc:         svc,
		styles:      styles.NewStyles(),
		currentView: ViewProjects,
		projectList: views.NewProjectListView(svc),
	}
}

func (a *App) Init() tea.Cmd {
	// Reopen the last project if it still exists
	ctx := context.Background()
	if id, err := a.svc.Preference(ctx, app.LastProjectKey); err == nil && id != "" {
		if project, err := a.svc.GetProject(ctx, id); err == nil {
			return a.openProject(project)
		}
	}

	return a.projectList.Init()
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.svc, project)

	// A failed write only costs the reopen on next launch
	_ = a.svc.SetPreference(context.Background(), app.LastProjectKey, project.ID)

	return tea.Batch(
		a.taskList.Init(),
		a.resize,
	)
}

func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		_ = a.svc.SetPreference(context.Background(), app.LastProjectKey, "")
		return a, tea.Batch(a.projectList.Init(), a.resize)

	case views.StorageWarning:
		a.banner = bannerText(msg.Warnings)
		return a, nil

	case tea.KeyMsg:
		// Any key dismisses the banner
		a.banner = ""
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}

	return a, cmd
}

func bannerText(warnings []*models.CorruptionError) string {
	keys := make([]string, len(warnings))
	for i, w := range warnings {
		keys[i] = fmt.Sprintf("%q", w.Key)
	}
	return fmt.Sprintf("Stored data under %s could not be read and was reset. See the log for details.",
		strings.Join(keys, ", "))
}

func (a *App) View() string {
	var body string
	switch {
	case a.currentView == ViewTasks && a.taskList != nil:
		body = a.taskList.View()
	default:
		body = a.projectList.View()
	}

	if a.banner == "" {
		return body
	}
	banner := a.styles.Banner.Width(styles.ContentWidth(a.width)).Render(a.banner)
	return lipgloss.JoinVertical(lipgloss.Left, banner, body)
}
