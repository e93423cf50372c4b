package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/trustfall/internal/faction"
)

var (
	loadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ADE80"))

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D1D5DB")).
			Padding(0, 1)

	textBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFFFF")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(1, 3).
			Align(lipgloss.Center)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Italic(true)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ADE80"))
)

// palette is the set of styles derived from a faction theme.
type palette struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	text     lipgloss.Style
	option   lipgloss.Style
	selected lipgloss.Style
	box      lipgloss.Style
}

func themed(t faction.Theme) palette {
	primary := lipgloss.Color(t.Primary)
	secondary := lipgloss.Color(t.Secondary)
	border := lipgloss.Color(t.Border)
	return palette{
		title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		subtitle: lipgloss.NewStyle().Foreground(secondary),
		text:     lipgloss.NewStyle().Foreground(secondary),
		option: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Foreground(primary).
			Padding(0, 2),
		selected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(primary).
			Foreground(lipgloss.Color("#000000")).
			Background(primary).
			Bold(true).
			Padding(0, 2),
		box: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(border).
			Foreground(primary).
			Padding(0, 2).
			Align(lipgloss.Center),
	}
}
