package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tgienger/tasktrack/internal/models"
)

const detailWidth = 72

type taskJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"projectId"`
	AssigneeID  string     `json:"assigneeId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func newTaskJSON(t models.Task) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
	}
}

type projectJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	Active      bool      `json:"active"`
}

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable draws rows under headers with no outer border
func renderTable(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	return t.Render()
}

func taskRows(tasks []models.Task, projects map[string]string, users map[string]string, now time.Time) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID,
			t.Status.Label(),
			t.Priority.Label(),
			orDash(projects[t.ProjectID]),
			orDash(users[t.AssigneeID]),
			formatDue(t, now),
			truncate(t.Title, 48),
		})
	}
	return rows
}

func formatDue(t models.Task, now time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	s := t.DueDate.Local().Format(time.DateOnly)
	if t.Status != models.StatusDone && t.DueDate.Before(now) {
		s += " (overdue)"
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeTaskDetail prints every field of t, wrapping the description
func writeTaskDetail(w io.Writer, t models.Task, project, assignee string, now time.Time) {
	fmt.Fprintf(w, "%s\n\n", t.Title)
	fmt.Fprintf(w, "ID:        %s\n", t.ID)
	fmt.Fprintf(w, "Status:    %s\n", t.Status.Label())
	fmt.Fprintf(w, "Priority:  %s\n", t.Priority.Label())
	fmt.Fprintf(w, "Project:   %s\n", orDash(project))
	fmt.Fprintf(w, "Assignee:  %s\n", orDash(assignee))
	fmt.Fprintf(w, "Due:       %s\n", formatDue(t, now))
	fmt.Fprintf(w, "Created:   %s\n", t.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Updated:   %s\n", t.UpdatedAt.Local().Format(time.DateTime))
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "Completed: %s\n", t.CompletedAt.Local().Format(time.DateTime))
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintf(w, "\n%s\n", wordwrap.String(desc, detailWidth))
	}
}
