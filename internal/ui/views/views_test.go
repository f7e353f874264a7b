package views

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/tasktrack/internal/app"
	"github.com/tgienger/tasktrack/internal/config"
	"github.com/tgienger/tasktrack/internal/kv"
	"github.com/tgienger/tasktrack/internal/models"
)

func newTestService(t *testing.T, policy config.DeletePolicy) *app.Service {
	t.Helper()
	return app.New(kv.NewMemory(), app.Options{DeletePolicy: policy})
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into m
func run(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func TestProjectListView_ShowsDefaultProjects(t *testing.T) {
	v := NewProjectListView(newTestService(t, ""))
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	run(t, v, v.Init())

	out := v.View()
	for _, name := range []string{"Website Redesign", "Mobile App", "API Integration"} {
		if !strings.Contains(out, name) {
			t.Errorf("view missing %q", name)
		}
	}
}

func TestProjectListView_DeleteRefusedWhileTasksExist(t *testing.T) {
	svc := newTestService(t, config.DeleteRestrict)
	if _, err := svc.CreateTask(context.Background(), models.CreateTaskCommand{Title: "t", ProjectID: "1", AssigneeID: "1"}); err != nil {
		t.Fatal(err)
	}

	v := NewProjectListView(svc)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	run(t, v, v.Init())

	v.Update(press("d"))
	if !v.confirmingDelete || v.deleteTargetID != "1" {
		t.Fatalf("expected delete confirmation for project 1, got %v %q", v.confirmingDelete, v.deleteTargetID)
	}
	_, cmd := v.Update(press("y"))
	run(t, v, cmd)

	if !v.statusErr || !strings.Contains(v.status, "still has tasks") {
		t.Errorf("status = %q (err=%v)", v.status, v.statusErr)
	}
	if _, err := svc.GetProject(context.Background(), "1"); err != nil {
		t.Errorf("project should survive: %v", err)
	}
}

func TestProjectListView_CreateOpensProject(t *testing.T) {
	v := NewProjectListView(newTestService(t, ""))
	run(t, v, v.Init())

	v.Update(press("n"))
	if !v.creating {
		t.Fatal("expected create form")
	}
	v.newName.SetValue("Infra")
	v.newColor.SetValue("#ff0000")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	next := run(t, v, cmd)
	if v.creating {
		t.Error("form should close after saving")
	}
	msg, ok := next().(SelectedProject)
	if !ok || msg.Project.Name != "Infra" || msg.Project.Color != "#ff0000" {
		t.Errorf("expected SelectedProject for Infra, got %#v", msg)
	}
}

func TestProjectListView_InvalidColorKeepsForm(t *testing.T) {
	v := NewProjectListView(newTestService(t, ""))
	run(t, v, v.Init())

	v.Update(press("n"))
	v.newName.SetValue("Infra")
	v.newColor.SetValue("red")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(t, v, cmd)

	if !v.creating {
		t.Error("form should stay open on a validation error")
	}
	if !strings.Contains(v.status, "hex color") {
		t.Errorf("status = %q", v.status)
	}
}

func openProject(t *testing.T, svc *app.Service, id string) *TaskListView {
	t.Helper()
	project, err := svc.GetProject(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	v := NewTaskListView(svc, project)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	run(t, v, v.Init())
	return v
}

func TestTaskListView_CreateAndAdvance(t *testing.T) {
	svc := newTestService(t, "")
	v := openProject(t, svc, "1")

	v.Update(press("n"))
	if !v.editing || !v.editingNew {
		t.Fatal("expected new task form")
	}
	v.editTitle.SetValue("Write docs")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(t, v, run(t, v, cmd))

	if len(v.tasks) != 1 || v.tasks[0].Title != "Write docs" {
		t.Fatalf("tasks = %+v", v.tasks)
	}
	if v.tasks[0].AssigneeID != "1" {
		t.Errorf("new tasks default to the current user, got %q", v.tasks[0].AssigneeID)
	}
	if v.stats.TodoCount != 1 {
		t.Errorf("stats = %+v", v.stats)
	}

	_, cmd = v.Update(press("s"))
	run(t, v, run(t, v, cmd))
	if v.tasks[0].Status != models.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", v.tasks[0].Status)
	}
	if !strings.Contains(v.View(), "In Progress") {
		t.Error("view should show the new status")
	}
}

func TestTaskListView_EmptyTitleShowsError(t *testing.T) {
	v := openProject(t, newTestService(t, ""), "1")

	v.Update(press("n"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(t, v, cmd)

	if !v.editing {
		t.Error("form should stay open")
	}
	if !v.statusErr || v.status != "title is required" {
		t.Errorf("status = %q", v.status)
	}
}

func TestTaskListView_FilterCycling(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()
	svc.CreateTask(ctx, models.CreateTaskCommand{Title: "low", ProjectID: "1", AssigneeID: "1", Priority: models.PriorityLow})
	svc.CreateTask(ctx, models.CreateTaskCommand{Title: "urgent", ProjectID: "1", AssigneeID: "2", Priority: models.PriorityUrgent})
	svc.CreateTask(ctx, models.CreateTaskCommand{Title: "elsewhere", ProjectID: "2", AssigneeID: "1"})

	v := openProject(t, svc, "1")
	if len(v.tasks) != 2 {
		t.Fatalf("expected only project 1 tasks, got %d", len(v.tasks))
	}

	want := []models.TaskStatus{models.StatusTodo, models.StatusInProgress, models.StatusInReview, models.StatusDone, ""}
	for _, status := range want {
		_, cmd := v.Update(press("f"))
		run(t, v, cmd)
		if v.statusFilter != status {
			t.Fatalf("statusFilter = %q, want %q", v.statusFilter, status)
		}
	}

	// LOW, MEDIUM, HIGH, URGENT
	for range 4 {
		_, cmd := v.Update(press("p"))
		run(t, v, cmd)
	}
	if len(v.tasks) != 1 || v.tasks[0].Title != "urgent" {
		t.Errorf("priority filter: tasks = %+v", v.tasks)
	}

	_, cmd := v.Update(press("x"))
	run(t, v, cmd)
	if len(v.tasks) != 2 {
		t.Errorf("clear filters: got %d tasks", len(v.tasks))
	}

	// Assignee dropdown: Anyone, then the users in order
	v.Update(press("a"))
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)
	if v.assigneeFilter != "2" || len(v.tasks) != 1 {
		t.Errorf("assignee filter %q: tasks = %+v", v.assigneeFilter, v.tasks)
	}
}

func TestTaskListView_DeleteTask(t *testing.T) {
	svc := newTestService(t, "")
	svc.CreateTask(context.Background(), models.CreateTaskCommand{Title: "doomed", ProjectID: "3", AssigneeID: "1"})
	v := openProject(t, svc, "3")

	v.Update(press("d"))
	_, cmd := v.Update(press("y"))
	run(t, v, run(t, v, cmd))

	if len(v.tasks) != 0 {
		t.Errorf("tasks = %+v", v.tasks)
	}
	if v.status != `Deleted "doomed"` {
		t.Errorf("status = %q", v.status)
	}
}

func TestCycle(t *testing.T) {
	opts := []string{"a", "b"}
	got := []string{cycle(opts, ""), cycle(opts, "a"), cycle(opts, "b"), cycle(opts, "zzz")}
	want := []string{"a", "b", "", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cycle step %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTaskListView_EditOverdueTask(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc := app.New(kv.NewMemory(), app.Options{Now: func() time.Time { return now }})

	due := now.Add(time.Hour)
	task, err := svc.CreateTask(ctx, models.CreateTaskCommand{Title: "ship", ProjectID: "1", AssigneeID: "1", DueDate: &due})
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(72 * time.Hour)

	v := openProject(t, svc, "1")
	v.startEditTask(task)
	v.editStatus = models.StatusDone
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(t, v, run(t, v, cmd))

	if v.editing || v.statusErr {
		t.Fatalf("save failed: editing=%v status=%q", v.editing, v.status)
	}
	got, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusDone {
		t.Errorf("status = %s, want DONE", got.Status)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v unchanged", got.DueDate, due)
	}

	// Changing the field still sends it through validation
	v.startEditTask(got)
	v.editDue.SetValue("2000-01-01")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(t, v, cmd)
	if !v.editing || !strings.Contains(v.status, "in the past") {
		t.Errorf("expected past due date to be rejected, status = %q", v.status)
	}
}

func TestTaskListView_EmptyMessages(t *testing.T) {
	v := openProject(t, newTestService(t, ""), "2")
	if !strings.Contains(v.View(), "No tasks. Press 'n'") {
		t.Errorf("unfiltered empty project:\n%s", v.View())
	}

	_, cmd := v.Update(press("f"))
	run(t, v, cmd)
	if !strings.Contains(v.View(), "No tasks match") {
		t.Errorf("filtered empty project:\n%s", v.View())
	}
}
