package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tasktrack/internal/models"
)

// Theme is the palette every style is derived from
type Theme struct {
	Name string

	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border    lipgloss.Color
	Focus     lipgloss.Color
	Selection lipgloss.Color
}

// TokyoNight is the default palette
var TokyoNight = Theme{
	Name:       "Tokyo Night",
	Background: "#1a1b26",
	Text:       "#c0caf5",
	Muted:      "#565f89",
	Primary:    "#7aa2f7",
	Secondary:  "#bb9af7",
	Accent:     "#7dcfff",
	Success:    "#9ece6a",
	Warning:    "#e0af68",
	Error:      "#f7768e",
	Border:     "#3b4261",
	Focus:      "#7aa2f7",
	Selection:  "#33467c",
}

// Current holds the active theme
var Current = TokyoNight

// StatusColor returns the badge color for a task status
func (t Theme) StatusColor(status models.TaskStatus) lipgloss.Color {
	switch status {
	case models.StatusInProgress:
		return t.Primary
	case models.StatusInReview:
		return t.Secondary
	case models.StatusDone:
		return t.Success
	}
	return t.Muted
}

// PriorityColor returns the badge color for a task priority
func (t Theme) PriorityColor(priority models.TaskPriority) lipgloss.Color {
	switch priority {
	case models.PriorityUrgent:
		return t.Error
	case models.PriorityHigh:
		return t.Warning
	case models.PriorityMedium:
		return t.Accent
	}
	return t.Muted
}

// MaxWidth caps the content width on wide terminals
const MaxWidth = 80

// ContentWidth returns min(terminalWidth, MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally once the terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the pre-computed styles for the UI
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	FilterBar    lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Badge is a filled label; callers set the background per status or priority
	Badge     lipgloss.Style
	TaskTitle lipgloss.Style
	Stat      lipgloss.Style
	StatValue lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Banner      lipgloss.Style
}

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

func filled(bg, fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Background(bg).Foreground(fg).Bold(true)
}

// NewStyles derives the styles from Current
func NewStyles() *Styles {
	t := Current
	text := lipgloss.NewStyle().Foreground(t.Text)
	muted := lipgloss.NewStyle().Foreground(t.Muted)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: muted,

		ListItem:     text.Padding(0, 2),
		ListSelected: filled(t.Selection, t.Primary).Padding(0, 2),
		FilterBar:    boxed(t.Border).Padding(0, 1),

		Button:        boxed(t.Border).Foreground(t.Text).Padding(0, 2),
		ButtonFocused: boxed(t.Focus).Foreground(t.Primary).Bold(true).Padding(0, 2),
		ButtonPrimary: filled(t.Primary, t.Background).Padding(0, 2),

		Input:        boxed(t.Border).Foreground(t.Text).Padding(0, 1),
		InputFocused: boxed(t.Focus).Foreground(t.Text).Padding(0, 1),

		Badge:     filled(t.Muted, t.Background).Padding(0, 1).MarginRight(1),
		TaskTitle: text,
		Stat:      muted.MarginRight(2),
		StatValue: text.Bold(true),

		Help:    muted.Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),

		StatusBar:   muted.Padding(0, 1),
		StatusError: lipgloss.NewStyle().Foreground(t.Error).Padding(0, 1),
		Banner:      filled(t.Warning, t.Background).Padding(0, 1),
	}
}
