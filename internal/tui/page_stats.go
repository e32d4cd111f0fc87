package tui

import (
	"github.com/decodeproject/decode/internal/appstate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statsPage shows the issuance total. Its id is the walkthrough screen name.
type statsPage struct {
	s *session
}

func newStatsPage(s *session) *statsPage {
	return &statsPage{s: s}
}

func (p *statsPage) ID() string { return appstate.ScreenDummy }

func (p *statsPage) Init() tea.Cmd { return nil }

func (p *statsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return p.s.handleScreenKey(p.ID(), appstate.ScreenDummyNext, msg)
	}
	return nil, nil
}

func (p *statsPage) View(width, height int) string {
	st := p.s.state()

	body := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Credentials issued"),
		renderTotal(appstate.GetTotal(st)),
		"",
		labelStyle.Render("Last refresh ")+appstate.FormatDate(appstate.GetDate(st)),
	)
	body = sectionStyle.Width(max(width-2, 20)).Render(body)

	return p.s.renderScreen(p.ID(), "Stats", body, width, height)
}
