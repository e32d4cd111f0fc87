package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const helpPageID = "help"

// helpPage lists the key bindings and returns to the page that opened it.
type helpPage struct {
	s        *session
	vp       viewport.Model
	returnTo string
}

func newHelpPage(s *session, fallback string) *helpPage {
	return &helpPage{s: s, vp: viewport.New(80, 20), returnTo: fallback}
}

func (p *helpPage) ID() string { return helpPageID }

func (p *helpPage) Init() tea.Cmd {
	p.vp.GotoTop()
	return nil
}

func (p *helpPage) SetParams(params interface{}) {
	if id, ok := params.(string); ok && id != "" {
		p.returnTo = id
	}
}

func (p *helpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches(km, p.s.keys.Escape), key.Matches(km, p.s.keys.Help):
		return nil, &PageNav{PageID: p.returnTo}
	case key.Matches(km, p.s.keys.Up):
		p.vp.ScrollUp(1)
	case key.Matches(km, p.s.keys.Down):
		p.vp.ScrollDown(1)
	}
	return nil, nil
}

func (p *helpPage) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Initializing..."
	}
	modalWidth := max(width-8, 30)
	modalHeight := max(height-4, 8)

	p.vp.Width = modalWidth - 4
	p.vp.Height = modalHeight - 4
	p.vp.SetContent(p.content())

	header := lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).Render("Help")
	status := labelStyle.Render("↑/↓: scroll | ?/esc: close")
	modal := lipgloss.JoinVertical(lipgloss.Left, header, p.vp.View(), status)

	framed := lipgloss.NewStyle().
		Width(modalWidth).
		Height(modalHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Render(modal)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, framed)
}

func (p *helpPage) content() string {
	k := p.s.keys
	bindings := []key.Binding{
		k.Refresh, k.NextScreen, k.Dismiss, k.Review, k.Onboarded, k.Help, k.Quit, k.ForceQuit,
	}
	var b strings.Builder
	b.WriteString("KEYS:\n")
	for _, kb := range bindings {
		h := kb.Help()
		fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
	}
	fmt.Fprintf(&b, "\nThe issuance total refreshes every %s and whenever the terminal regains focus.\n", p.s.updateInterval)
	b.WriteString("A total of XXX means the last refresh failed.\n")
	return b.String()
}
