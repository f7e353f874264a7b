package views

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tasktrack/internal/models"
	"github.com/tgienger/tasktrack/internal/ui/styles"
)

// StorageWarning asks the root model to show a banner for discarded data
type StorageWarning struct {
	Warnings []*models.CorruptionError
}

// errMsg reports a failed service call to the view that issued it
type errMsg struct {
	err error
}

func warn(w []*models.CorruptionError) tea.Cmd {
	return func() tea.Msg { return StorageWarning{Warnings: w} }
}

// describeError turns a service error into a status line
func describeError(err error) string {
	switch {
	case errors.Is(err, models.ErrProjectInUse):
		return "Project still has tasks. Delete them first, or set projects.delete-policy = \"cascade\"."
	case errors.Is(err, models.ErrReferenceNotFound):
		return "That project no longer exists."
	case errors.Is(err, models.ErrInvalidCommand):
		return strings.TrimPrefix(err.Error(), models.ErrInvalidCommand.Error()+": ")
	case errors.Is(err, models.ErrStorageWriteFailed):
		return "Could not save: " + err.Error()
	}
	return "Error: " + err.Error()
}

// shortcut is one entry of a key legend
type shortcut struct {
	key  string
	desc string
}

// dialog centers content in the content area of a width x height terminal
func dialog(width, height int, content string) string {
	placed := lipgloss.Place(styles.ContentWidth(width), height, lipgloss.Center, lipgloss.Center, content)
	return styles.CenterView(placed, width, height)
}

// legend renders the one-line key hint under a view. Narrow terminals only
// get a pointer to the full list.
func legend(s *styles.Styles, width int, shortcuts []shortcut) string {
	if w := styles.ContentWidth(width); w > 0 && w < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	parts := make([]string, len(shortcuts))
	for i, sc := range shortcuts {
		parts[i] = s.HelpKey.Render(sc.key) + " " + sc.desc
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// shortcutsPopup renders every binding of a view in a bordered box
func shortcutsPopup(s *styles.Styles, width, height int, shortcuts []shortcut) string {
	rows := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, sc := range shortcuts {
		rows = append(rows, s.HelpKey.Render(fmt.Sprintf("%-6s", sc.key))+" "+sc.desc)
	}
	rows = append(rows, "", s.TitleMuted.Render("Press any key to close"))
	return dialog(width, height, s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

// confirmPopup asks a yes/no question about a destructive action
func confirmPopup(s *styles.Styles, width, height int, title string, lines ...string) string {
	rows := []string{s.Title.Foreground(styles.Current.Error).Render(title), ""}
	for _, l := range lines {
		rows = append(rows, s.TitleMuted.Render(l))
	}
	rows = append(rows, "", lipgloss.JoinHorizontal(lipgloss.Center,
		s.ButtonPrimary.Render(" Y - Yes "),
		"  ",
		s.Button.Render(" N - No "),
	))
	return dialog(width, height, lipgloss.JoinVertical(lipgloss.Center, rows...))
}

// statusLine renders the result of the last action, if any
func statusLine(s *styles.Styles, text string, isErr bool) string {
	switch {
	case text == "":
		return ""
	case isErr:
		return s.StatusError.Render(text) + "\n"
	}
	return s.StatusBar.Render(text) + "\n"
}
