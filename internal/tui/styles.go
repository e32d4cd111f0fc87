package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("17")
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("244")
	ColorWhite  = lipgloss.Color("255")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(ColorGray)
	valueStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(ColorNavy).
			Background(ColorGreen).
			Padding(0, 1)

	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorYellow).
			Foreground(ColorYellow).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)
)

// renderBranding renders "decode" with a green to light blue gradient.
func renderBranding() string {
	colors := []string{"#49E209", "#35DD2F", "#21D955", "#0DD47B", "#00D0A1", "#00CAC7"}
	var out string
	for i, ch := range "decode" {
		out += lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color(colors[i])).
			Bold(true).
			Render(string(ch))
	}
	return out
}
