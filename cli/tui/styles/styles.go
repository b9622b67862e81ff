// Package styles holds the dashboard palette and the lipgloss styles shared by
// every screen.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Primary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	Highlight = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#FAFAFA"}
	Surface   = lipgloss.AdaptiveColor{Light: "#E4E4F7", Dark: "#2A2A40"}
	Border    = lipgloss.AdaptiveColor{Light: "#C2C2D6", Dark: "#4A4A63"}
	Muted     = lipgloss.AdaptiveColor{Light: "#8C8C99", Dark: "#777788"}
	Success   = lipgloss.AdaptiveColor{Light: "#02A76F", Dark: "#04B575"}
	Warning   = lipgloss.AdaptiveColor{Light: "#C28800", Dark: "#E6B800"}
	Danger    = lipgloss.AdaptiveColor{Light: "#D83A3A", Dark: "#FF6B6B"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	InfoStyle       = lipgloss.NewStyle().Foreground(Primary)
	SuccessStyle    = lipgloss.NewStyle().Foreground(Success)
	WarningStyle    = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle      = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	HelpStyle       = lipgloss.NewStyle().Foreground(Muted)
	PaginationStyle = lipgloss.NewStyle().Foreground(Muted).Padding(0, 1)
	ActivePageStyle = lipgloss.NewStyle().Foreground(Highlight).Background(Primary).Bold(true).Padding(0, 1)
	PageStyle       = lipgloss.NewStyle().Foreground(Muted).Padding(0, 1)
	SpinnerStyle    = lipgloss.NewStyle().Foreground(Primary)
	LabelStyle      = lipgloss.NewStyle().Foreground(Muted).Width(16)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 2)
)

// RenderTitle renders a screen heading with an optional trailing hint.
func RenderTitle(title, hint string) string {
	if hint == "" {
		return TitleStyle.Render(title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, TitleStyle.Render(title), HelpStyle.Render(hint))
}
