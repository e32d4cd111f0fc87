package tui

import (
	"fmt"
	"strings"

	"github.com/decodeproject/decode/internal/appstate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxAttributeRows = 8

// detailsPage shows the history of fetched totals and, when the client
// supports it, the per-attribute breakdown.
type detailsPage struct {
	s *session
}

func newDetailsPage(s *session) *detailsPage {
	return &detailsPage{s: s}
}

func (p *detailsPage) ID() string { return appstate.ScreenDummyNext }

func (p *detailsPage) Init() tea.Cmd {
	return p.s.loadAttributesCmd()
}

func (p *detailsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		cmd, nav := p.s.handleScreenKey(p.ID(), appstate.ScreenDummy, msg)
		if cmd != nil {
			cmd = tea.Batch(cmd, p.s.loadAttributesCmd())
		}
		return cmd, nav
	}
	return nil, nil
}

func (p *detailsPage) View(width, height int) string {
	inner := max(width-6, 20)

	chart := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(fmt.Sprintf("Total history (last %d refreshes)", p.s.history.len())),
		p.s.history.render(inner, max(height/3, 5)),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Width(max(width-2, 20)).Render(chart),
		sectionStyle.Width(max(width-2, 20)).Render(p.renderAttributes()),
	)
	return p.s.renderScreen(p.ID(), "Details", body, width, height)
}

func (p *detailsPage) renderAttributes() string {
	title := labelStyle.Render("Issued by attribute")
	switch {
	case p.s.attributesErr != nil:
		return lipgloss.JoinVertical(lipgloss.Left, title, failStyle.Render("unavailable"))
	case len(p.s.attributes) == 0:
		return lipgloss.JoinVertical(lipgloss.Left, title, labelStyle.Render("no data"))
	}

	var rows []string
	for i, ac := range p.s.attributes {
		if i == maxAttributeRows {
			rows = append(rows, labelStyle.Render(fmt.Sprintf("… %d more", len(p.s.attributes)-i)))
			break
		}
		rows = append(rows, fmt.Sprintf("%-24s %s", ac.AttributeID, valueStyle.Render(fmt.Sprint(ac.Count))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"))
}
