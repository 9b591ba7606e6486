package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	DarkForeground  = lipgloss.Color("#e6edf3")
	DarkMuted       = lipgloss.Color("#7d8590")
	DarkAccent      = lipgloss.Color("#58a6ff")
	DarkBorder      = lipgloss.Color("#30363d")
	LightForeground = lipgloss.Color("#252525")
	LightMuted      = lipgloss.Color("#6e7781")
	LightAccent     = lipgloss.Color("#0969da")
	LightBorder     = lipgloss.Color("#d0d7de")

	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
)

// Styles holds the lipgloss styles of every screen.
type Styles struct {
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Note      lipgloss.Style
	Pane      lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles builds the styles for a "dark" (default) or "light" theme.
func NewStyles(theme string) Styles {
	fg, muted, accent, border := DarkForeground, DarkMuted, DarkAccent, DarkBorder
	if theme == "light" {
		fg, muted, accent, border = LightForeground, LightMuted, LightAccent, LightBorder
	}

	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(fg).Bold(true).Underline(true).Padding(0, 1),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(fg),
		Label:     lipgloss.NewStyle().Foreground(muted),
		Item:      lipgloss.NewStyle().Foreground(fg).PaddingLeft(2),
		Selected:  lipgloss.NewStyle().Foreground(accent).Bold(true).PaddingLeft(2),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Status:    lipgloss.NewStyle().Foreground(Success),
		Error:     lipgloss.NewStyle().Foreground(Destructive),
		Warning:   lipgloss.NewStyle().Foreground(Warning),
		Note:      lipgloss.NewStyle().Foreground(accent).Italic(true),
		Pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
