package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tasktrack/internal/app"
	"github.com/tgienger/tasktrack/internal/config"
	"github.com/tgienger/tasktrack/internal/models"
	"github.com/tgienger/tasktrack/internal/ui/keys"
	"github.com/tgienger/tasktrack/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.Muted).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.Muted).Width(width)
	}

	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.project.Color)).Render("●")
	title := titleStyle.Render(swatch + " " + p.Title())
	desc := descStyle.Render(p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// ProjectListView lists projects and creates or deletes them
type ProjectListView struct {
	svc              *app.Service
	list             list.Model
	delegate         *projectDelegate
	styles           *styles.Styles
	keys             keys.KeyMap
	width            int
	height           int
	creating         bool
	loaded           bool
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string
	newName          textinput.Model
	newDesc          textinput.Model
	newColor         textinput.Model
	focusIdx         int // 0=name, 1=desc, 2=color, 3=confirm
	status           string
	statusErr        bool

	showHelpPopup bool
}

func NewProjectListView(svc *app.Service) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	newColor := textinput.New()
	newColor.Placeholder = "#3B82F6"
	newColor.CharLimit = 7

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		svc:      svc,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
		newColor: newColor,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	projects, err := v.svc.GetAllProjects(context.Background())
	if err != nil {
		return errMsg{err: err}
	}
	return projectsLoadedMsg{projects: projects, warnings: v.svc.StorageWarnings()}
}

type projectsLoadedMsg struct {
	projects []models.Project
	warnings []*models.CorruptionError
}

type projectCreatedMsg struct {
	project models.Project
}

type projectDeletedMsg struct {
	name    string
	removed int
}

// SelectedProject asks the app to open a project's task list
type SelectedProject struct {
	Project models.Project
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-7)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.loaded = true
		if len(msg.warnings) > 0 {
			return v, warn(msg.warnings)
		}
		return v, nil

	case projectCreatedMsg:
		v.creating = false
		v.setStatus("", false)
		return v, func() tea.Msg { return SelectedProject{Project: msg.project} }

	case projectDeletedMsg:
		text := fmt.Sprintf("Deleted %q", msg.name)
		if msg.removed > 0 {
			text += fmt.Sprintf(" and %d tasks", msg.removed)
		}
		v.setStatus(text, false)
		return v, v.loadProjects

	case errMsg:
		v.loaded = true
		v.setStatus(describeError(msg.err), true)
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		// Let the list own keys while its filter is being typed
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.startCreate()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) setStatus(text string, isErr bool) {
	v.status = text
	v.statusErr = isErr
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id, name := v.deleteTargetID, v.deleteTargetName
		return v, func() tea.Msg {
			removed, err := v.svc.DeleteProject(context.Background(), id)
			if err != nil {
				return errMsg{err: err}
			}
			return projectDeletedMsg{name: name, removed: removed}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) startCreate() {
	v.creating = true
	v.focusIdx = 0
	v.newName.Reset()
	v.newDesc.Reset()
	v.newColor.Reset()
	v.setStatus("", false)
	v.updateFocus()
}

func (v *ProjectListView) createProject() tea.Cmd {
	cmd := models.CreateProjectCommand{
		Name:        v.newName.Value(),
		Description: strings.TrimSpace(v.newDesc.Value()),
		Color:       v.newColor.Value(),
	}
	if strings.TrimSpace(cmd.Color) == "" {
		cmd.Color = v.newColor.Placeholder
	}
	return func() tea.Msg {
		project, err := v.svc.CreateProject(context.Background(), cmd)
		if err != nil {
			return errMsg{err: err}
		}
		return projectCreatedMsg{project: project}
	}
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.setStatus("", false)
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.createProject()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.createProject()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case 2:
		v.newColor, cmd = v.newColor.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	v.newColor.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	case 2:
		v.newColor.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderStatus() + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderStatus() string {
	return statusLine(v.styles, v.status, v.statusErr)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
		"",
		v.renderStatus(),
	)

	return dialog(v.width, v.height, content)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	colorStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		colorStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	color := strings.TrimSpace(v.newColor.Value())
	if color == "" {
		color = v.newColor.Placeholder
	}
	preview := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●●●")

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		"Color:",
		lipgloss.JoinHorizontal(lipgloss.Center, colorStyle.Width(14).Render(v.newColor.View()), "  ", preview),
		"",
		btnStyle.Render(" Create "),
		"",
		v.renderStatus(),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	return dialog(v.width, v.height, form)
}

var projectShortcuts = []shortcut{
	{"↵", "open project"},
	{"n", "new project"},
	{"d", "delete project"},
	{"/", "filter projects"},
	{"q", "quit"},
}

func (v *ProjectListView) renderHelp() string {
	return legend(v.styles, v.width, []shortcut{{"↵", "select"}, {"n", "new"}, {"d", "del"}, {"q", "quit"}})
}

func (v *ProjectListView) renderHelpPopup() string {
	return shortcutsPopup(v.styles, v.width, v.height, projectShortcuts)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	consequence := "Projects with tasks cannot be deleted."
	if v.svc.DeletePolicy() == config.DeleteCascade {
		consequence = "This will also delete all tasks in this project."
	}
	return confirmPopup(v.styles, v.width, v.height, "Delete Project?",
		fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTargetName),
		consequence,
	)
}
