package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/nzaccagnino/folio/internal/notify"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	text      = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#fafafa"}
	muted     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}
	danger    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5C5C"}

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	ActivePanelStyle = PanelStyle.
				BorderForeground(highlight)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text)

	MutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight)

	TagStyle = lipgloss.NewStyle().
			Foreground(special).
			Padding(0, 1).
			Background(lipgloss.Color("#1a1a2e")).
			Bold(true)

	ActiveTagStyle = TagStyle.
			Foreground(lipgloss.Color("#000000")).
			Background(highlight)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(1, 3)

	ListItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	SelectedListItemStyle = ListItemStyle.
				Background(highlight).
				Foreground(lipgloss.Color("#000000"))

	DeletingListItemStyle = ListItemStyle.
				Foreground(muted).
				Strikethrough(true)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(36)

	toastStyles = map[notify.Variant]lipgloss.Style{
		notify.Default: toastStyle.BorderForeground(subtle).Foreground(text),
		notify.Success: toastStyle.BorderForeground(special).Foreground(special),
		notify.Error:   toastStyle.BorderForeground(danger).Foreground(danger),
	}
)

func toastStyleFor(t notify.Toast) lipgloss.Style {
	s, ok := toastStyles[t.Variant]
	if !ok {
		s = toastStyles[notify.Default]
	}
	if t.Leaving || !t.Visible {
		s = s.Faint(true)
	}
	return s
}
