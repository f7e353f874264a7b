package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tgienger/tasktrack/internal/app"
	"github.com/tgienger/tasktrack/internal/models"
	"github.com/tgienger/tasktrack/internal/ui/keys"
	"github.com/tgienger/tasktrack/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// cycle returns the element after cur in opts, with "" standing for "any"
// before the first option.
func cycle[T comparable](opts []T, cur T) T {
	var zero T
	if cur == zero {
		return opts[0]
	}
	for i, o := range opts {
		if o == cur {
			if i == len(opts)-1 {
				return zero
			}
			return opts[i+1]
		}
	}
	return zero
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusBackButton FocusArea = iota
	FocusSearchInput
	FocusAssigneeDropdown
	FocusTaskList
)

const focusAreas = 4

// Edit form fields in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldAssignee
	fieldStatus
	fieldDue
	fieldSave
	fieldCount
)

// TaskListView shows the tasks of one project
type TaskListView struct {
	svc     *app.Service
	project models.Project
	tasks   []models.Task
	users   []models.User
	stats   models.TaskStatistics
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	loaded      bool
	searchInput textinput.Model

	// Filters, empty means any
	statusFilter   models.TaskStatus
	priorityFilter models.TaskPriority
	assigneeFilter string

	// Assignee dropdown state
	dropdownOpen   bool
	dropdownCursor int

	// Task creation/editing
	editing      bool
	editingNew   bool
	editID       string
	editTitle    textinput.Model
	editDesc     textarea.Model
	editDue      textinput.Model
	editDueWas   string
	editPriority models.TaskPriority
	editAssignee int
	editStatus   models.TaskStatus
	editFocusIdx int

	viewingTask bool

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	status    string
	statusErr bool

	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(svc *app.Service, project models.Project) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 2000
	editDesc.SetWidth(50)
	editDesc.SetHeight(4)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD (optional)"
	editDue.CharLimit = 25

	return &TaskListView{
		svc:         svc,
		project:     project,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		focus:       FocusTaskList,
		searchInput: search,
		editTitle:   editTitle,
		editDesc:    editDesc,
		editDue:     editDue,
	}
}

// BackToProjects signals to go back to project list
type BackToProjects struct{}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks()
}

type snapshotMsg struct {
	snap     app.Snapshot
	warnings []*models.CorruptionError
}

type taskSavedMsg struct {
	task    models.Task
	created bool
}

type taskDeletedMsg struct {
	name string
}

// filter returns the current filter scoped to this project
func (v *TaskListView) filter() models.TaskFilter {
	return models.TaskFilter{
		Status:     v.statusFilter,
		Priority:   v.priorityFilter,
		ProjectID:  v.project.ID,
		AssigneeID: v.assigneeFilter,
		Search:     strings.TrimSpace(v.searchInput.Value()),
	}
}

func (v *TaskListView) loadTasks() tea.Cmd {
	filter := v.filter()
	return func() tea.Msg {
		snap, err := v.svc.Load(context.Background(), filter)
		if err != nil {
			return errMsg{err: err}
		}
		return snapshotMsg{snap: snap, warnings: v.svc.StorageWarnings()}
	}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case snapshotMsg:
		v.tasks = msg.snap.Tasks
		v.users = msg.snap.Users
		v.stats = msg.snap.Stats
		v.loaded = true
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		if v.viewingTask && len(v.tasks) == 0 {
			v.viewingTask = false
		}
		if len(msg.warnings) > 0 {
			return v, warn(msg.warnings)
		}
		return v, nil

	case taskSavedMsg:
		v.editing = false
		if msg.created {
			v.setStatus(fmt.Sprintf("Created %q", msg.task.Title), false)
		} else {
			v.setStatus(fmt.Sprintf("%q is %s", msg.task.Title, msg.task.Status.Label()), false)
		}
		return v, v.loadTasks()

	case taskDeletedMsg:
		v.viewingTask = false
		v.setStatus(fmt.Sprintf("Deleted %q", msg.name), false)
		return v, v.loadTasks()

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

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		if v.dropdownOpen {
			return v.updateDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) setStatus(text string, isErr bool) {
	v.status = text
	v.statusErr = isErr
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing a search
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, v.loadTasks()
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.cursor, v.scrollY = 0, 0
			return v, tea.Batch(cmd, v.loadTasks())
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusBackButton:
			return v, func() tea.Msg { return BackToProjects{} }
		case FocusAssigneeDropdown:
			v.openDropdown()
		case FocusTaskList:
			if _, ok := v.selected(); ok {
				v.viewingTask = true
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok && v.focus == FocusTaskList {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok && v.focus == FocusTaskList {
			v.confirmDelete(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Advance):
		if task, ok := v.selected(); ok {
			return v, v.advance(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusAssigneeDropdown
		v.openDropdown()
		return v, nil

	case key.Matches(msg, v.keys.StatusFilter):
		v.statusFilter = cycle(models.TaskStatuses, v.statusFilter)
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.PriorityFilter):
		v.priorityFilter = cycle(models.TaskPriorities, v.priorityFilter)
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.ClearFilters):
		v.statusFilter = ""
		v.priorityFilter = ""
		v.assigneeFilter = ""
		v.searchInput.Reset()
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) openDropdown() {
	v.dropdownOpen = true
	v.dropdownCursor = 0
	for i, u := range v.users {
		if u.ID == v.assigneeFilter {
			v.dropdownCursor = i + 1
		}
	}
}

func (v *TaskListView) updateDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dropdownOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.dropdownCursor > 0 {
			v.dropdownCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.dropdownCursor < len(v.users) { // +1 for "Anyone"
			v.dropdownCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.dropdownCursor == 0 {
			v.assigneeFilter = ""
		} else {
			v.assigneeFilter = v.users[v.dropdownCursor-1].ID
		}
		v.dropdownOpen = false
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()
	}

	return v, nil
}

func (v *TaskListView) confirmDelete(task models.Task) {
	v.confirmingDelete = true
	v.deleteTargetID = task.ID
	v.deleteTargetName = task.Title
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id, name := v.deleteTargetID, v.deleteTargetName
		return v, func() tea.Msg {
			if err := v.svc.DeleteTask(context.Background(), id); err != nil {
				return errMsg{err: err}
			}
			return taskDeletedMsg{name: name}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// advance moves a task to the next status in the workflow
func (v *TaskListView) advance(task models.Task) tea.Cmd {
	next := task.Status.Next()
	return func() tea.Msg {
		updated, err := v.svc.UpdateTask(context.Background(), models.UpdateTaskCommand{ID: task.ID, Status: &next})
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: updated}
	}
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := v.selected()
	if !ok {
		v.viewingTask = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.startEditTask(task)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete(task)
		return v, nil
	case key.Matches(msg, v.keys.Advance):
		return v, v.advance(task)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.setStatus("", false)
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.moveEditFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.moveEditFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldDesc:
			// newlines go to the textarea
		case fieldSave:
			return v, v.saveTask()
		default:
			v.moveEditFocus(1)
			return v, nil
		}

	case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right):
		dir := 1
		if key.Matches(msg, v.keys.Left) {
			dir = -1
		}
		switch v.editFocusIdx {
		case fieldPriority:
			v.editPriority = step(models.TaskPriorities, v.editPriority, dir)
			return v, nil
		case fieldAssignee:
			if len(v.users) > 0 {
				v.editAssignee = (v.editAssignee + dir + len(v.users)) % len(v.users)
			}
			return v, nil
		case fieldStatus:
			v.editStatus = step(models.TaskStatuses, v.editStatus, dir)
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

// step moves dir places through opts, wrapping at either end
func step[T comparable](opts []T, cur T, dir int) T {
	for i, o := range opts {
		if o == cur {
			return opts[(i+dir+len(opts))%len(opts)]
		}
	}
	return opts[0]
}

func (v *TaskListView) moveEditFocus(dir int) {
	v.editFocusIdx = (v.editFocusIdx + dir + fieldCount) % fieldCount
	// Status is fixed to TODO for new tasks
	if v.editingNew && v.editFocusIdx == fieldStatus {
		v.editFocusIdx = (v.editFocusIdx + dir + fieldCount) % fieldCount
	}
	v.updateEditFocus()
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + focusAreas) % focusAreas)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines + 1 margin
	availableHeight := max(v.height-14, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editID = ""
	v.editFocusIdx = fieldTitle
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editDueWas = ""
	v.editPriority = models.PriorityMedium
	v.editStatus = models.StatusTodo
	v.editAssignee = 0
	if v.assigneeFilter != "" {
		v.editAssignee = v.userIndex(v.assigneeFilter)
	} else if me, err := v.svc.CurrentUser(context.Background()); err == nil {
		v.editAssignee = v.userIndex(me.ID)
	}
	v.setStatus("", false)
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editID = task.ID
	v.editFocusIdx = fieldTitle
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editDue.Reset()
	v.editDueWas = ""
	if task.DueDate != nil {
		v.editDueWas = task.DueDate.Local().Format(time.DateOnly)
	}
	v.editDue.SetValue(v.editDueWas)
	v.editPriority = task.Priority
	v.editStatus = task.Status
	v.editAssignee = v.userIndex(task.AssigneeID)
	v.setStatus("", false)
	v.updateEditFocus()
}

func (v *TaskListView) userIndex(id string) int {
	for i, u := range v.users {
		if u.ID == id {
			return i
		}
	}
	return 0
}

func (v *TaskListView) userName(id string) string {
	for _, u := range v.users {
		if u.ID == id {
			return u.Name
		}
	}
	if id == "" {
		return "Unassigned"
	}
	return id
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldDue:
		v.editDue.Focus()
	}
}

// saveTask validates the form locally only as far as parsing the due date;
// every business rule is left to the service so its message is shown as is.
// An untouched due date is left out of the update.
func (v *TaskListView) saveTask() tea.Cmd {
	var due *time.Time
	if raw := strings.TrimSpace(v.editDue.Value()); raw != "" && (v.editingNew || raw != v.editDueWas) {
		d, err := models.ParseDueDate(raw, time.Local)
		if err != nil {
			v.setStatus(describeError(err), true)
			return nil
		}
		due = &d
	}

	assignee := ""
	if v.editAssignee < len(v.users) {
		assignee = v.users[v.editAssignee].ID
	}

	title := v.editTitle.Value()
	desc := strings.TrimSpace(v.editDesc.Value())
	priority := v.editPriority

	if v.editingNew {
		cmd := models.CreateTaskCommand{
			Title:       title,
			Description: desc,
			Priority:    priority,
			ProjectID:   v.project.ID,
			AssigneeID:  assignee,
			DueDate:     due,
		}
		return func() tea.Msg {
			task, err := v.svc.CreateTask(context.Background(), cmd)
			if err != nil {
				return errMsg{err: err}
			}
			return taskSavedMsg{task: task, created: true}
		}
	}

	status := v.editStatus
	cmd := models.UpdateTaskCommand{
		ID:          v.editID,
		Title:       &title,
		Description: &desc,
		Status:      &status,
		Priority:    &priority,
		AssigneeID:  &assignee,
		DueDate:     due,
	}
	return func() tea.Msg {
		task, err := v.svc.UpdateTask(context.Background(), cmd)
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: task}
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderStatus())
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderStatus() string {
	return statusLine(v.styles, v.status, v.statusErr)
}

func (v *TaskListView) renderStats() string {
	s := v.styles
	stat := func(label string, n int) string {
		return s.Stat.Render(label + " " + s.StatValue.Render(fmt.Sprint(n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total", v.stats.Total),
		stat("To Do", v.stats.TodoCount),
		stat("In Progress", v.stats.InProgressCount),
		stat("Review", v.stats.InReviewCount),
		stat("Done", v.stats.DoneCount),
		s.Stat.Render(s.StatValue.Render(fmt.Sprintf("%d%%", v.stats.CompletionRate()))+" complete"),
	)
}

func (v *TaskListView) renderFilters() string {
	s := v.styles
	label := func(name, value string) string {
		if value == "" {
			value = "any"
		}
		return s.TitleMuted.Render(name+": ") + s.TaskTitle.Render(value)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		label("status", v.statusFilter.Label()), "   ",
		label("priority", v.priorityFilter.Label()),
	)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	assigneeStyle := s.Button
	if v.focus == FocusAssigneeDropdown {
		assigneeStyle = s.ButtonFocused
	}
	assigneeLabel := "Anyone"
	if v.assigneeFilter != "" {
		assigneeLabel = v.userName(v.assigneeFilter)
	}
	if !isNarrow {
		assigneeLabel = "Assignee: " + assigneeLabel
	}
	assigneeBtn := assigneeStyle.Render(assigneeLabel + " ▼")

	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(v.project.Color)).Render("● ")
	title := swatch + s.Title.Render(v.project.Name)

	var header string
	if isNarrow {
		// esc still goes back without the button
		header = lipgloss.JoinVertical(lipgloss.Left,
			searchBox,
			assigneeBtn,
		)
	} else {
		backStyle := s.Button
		if v.focus == FocusBackButton {
			backStyle = s.ButtonFocused
		}
		backBtn := backStyle.Render("← Projects")

		header = lipgloss.JoinHorizontal(lipgloss.Center,
			backBtn, "  ", searchBox, "  ", assigneeBtn,
		)
	}

	dropdown := ""
	if v.dropdownOpen {
		dropdown = "\n" + v.renderDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		v.renderStats(),
		header+dropdown,
		v.renderFilters(),
	)
}

func (v *TaskListView) renderDropdown() string {
	s := v.styles
	var items []string

	anyStyle := s.ListItem
	if v.dropdownCursor == 0 {
		anyStyle = s.ListSelected
	}
	items = append(items, anyStyle.Render("Anyone"))

	for i, u := range v.users {
		itemStyle := s.ListItem
		if v.dropdownCursor == i+1 {
			itemStyle = s.ListSelected
		}
		items = append(items, itemStyle.Render(u.Name+" "+s.TitleMuted.Render(strings.ToLower(string(u.Role)))))
	}

	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) badge(text string, color lipgloss.Color) string {
	return v.styles.Badge.Background(color).Render(text)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if len(v.tasks) == 0 {
		// The project scope is not a user filter
		f := v.filter()
		f.ProjectID = ""
		if !f.IsEmpty() {
			return s.TitleMuted.Render("No tasks match. Press 'x' to clear filters.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	titleLine := v.badge(task.Status.Label(), styles.Current.StatusColor(task.Status)) + task.Title

	meta := []string{
		lipgloss.NewStyle().Foreground(styles.Current.PriorityColor(task.Priority)).Render(task.Priority.Label()),
		v.userName(task.AssigneeID),
	}
	if task.DueDate != nil {
		due := "due " + task.DueDate.Local().Format("Jan 2")
		if task.Status != models.StatusDone && task.DueDate.Before(time.Now()) {
			due = lipgloss.NewStyle().Foreground(styles.Current.Error).Render(due)
		}
		meta = append(meta, due)
	}
	metaLine := strings.Join(meta, s.TitleMuted.Render(" · "))

	lineStyle := s.ListItem.Width(width)
	if selected {
		lineStyle = s.ListSelected.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lineStyle.Render(titleLine), lineStyle.Render(metaLine)) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)
	picker := func(idx int, value string) string {
		return fieldStyle(idx).Width(inputWidth).Render("‹ " + value + " ›")
	}

	assignee := "No users"
	if v.editAssignee < len(v.users) {
		assignee = v.users[v.editAssignee].Name
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.editTitle.View()),
		"Description:",
		fieldStyle(fieldDesc).Render(v.editDesc.View()),
		"Priority:",
		picker(fieldPriority, v.editPriority.Label()),
		"Assignee:",
		picker(fieldAssignee, assignee),
	}
	if !v.editingNew {
		rows = append(rows, "Status:", picker(fieldStatus, v.editStatus.Label()))
	}
	rows = append(rows,
		"Due date:",
		fieldStyle(fieldDue).Width(inputWidth).Render(v.editDue.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		v.renderStatus(),
		s.TitleMuted.Render("Tab: next • ←→: change • Ctrl+S: save • Esc: cancel"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return dialog(v.width, v.height, form)
}

var taskShortcuts = []shortcut{
	{"↵", "view task"},
	{"n", "new task"},
	{"e", "edit task"},
	{"s", "advance status"},
	{"d", "delete task"},
	{"/", "search"},
	{"f", "cycle status filter"},
	{"p", "cycle priority filter"},
	{"a", "filter by assignee"},
	{"x", "clear filters"},
	{"esc", "back"},
	{"q", "quit"},
}

func (v *TaskListView) renderHelp() string {
	return legend(v.styles, v.width, []shortcut{
		{"↵", "view"}, {"n", "new"}, {"e", "edit"}, {"s", "advance"}, {"d", "del"},
		{"/", "search"}, {"f", "status"}, {"p", "priority"}, {"a", "assignee"}, {"esc", "back"},
	})
}

func (v *TaskListView) renderHelpPopup() string {
	return shortcutsPopup(v.styles, v.width, v.height, taskShortcuts)
}

func (v *TaskListView) renderDeleteConfirm() string {
	return confirmPopup(v.styles, v.width, v.height, "Delete Task?",
		fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTargetName))
}

func (v *TaskListView) renderTaskView() string {
	task, ok := v.selected()
	if !ok {
		return ""
	}

	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted
	const stamp = "Jan 2, 2006 3:04 PM"

	descText := s.TitleMuted.Render("No description")
	if task.Description != "" {
		descText = wordwrap.String(task.Description, textWidth)
	}

	due := "None"
	if task.DueDate != nil {
		due = task.DueDate.Local().Format("Mon Jan 2, 2006")
	}

	rows := []string{
		s.Title.MarginBottom(1).Render(task.Title),
		v.badge(task.Status.Label(), styles.Current.StatusColor(task.Status)) +
			v.badge(task.Priority.Label(), styles.Current.PriorityColor(task.Priority)),
		"",
		labelStyle.Render("Assignee"),
		v.userName(task.AssigneeID),
		"",
		labelStyle.Render("Due"),
		due,
		"",
		labelStyle.Render("Description"),
		descText,
		"",
		labelStyle.Render("Created ") + task.CreatedAt.Local().Format(stamp),
		labelStyle.Render("Updated ") + task.UpdatedAt.Local().Format(stamp),
	}
	if task.CompletedAt != nil {
		rows = append(rows, labelStyle.Render("Completed ")+task.CompletedAt.Local().Format(stamp))
	}
	rows = append(rows,
		"",
		v.renderStatus(),
		legend(s, v.width, []shortcut{{"e", "edit"}, {"s", "advance"}, {"d", "delete"}, {"esc", "back"}}),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}
