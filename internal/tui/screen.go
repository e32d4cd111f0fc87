package tui

import (
	"strings"

	"github.com/decodeproject/decode/internal/appstate"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// handleScreenKey implements the bindings shared by the walkthrough screens.
// next is the page tab switches to.
func (s *session) handleScreenKey(screen, next string, msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	switch {
	case key.Matches(msg, s.keys.Refresh):
		if appstate.GetLoading(s.state()) {
			return nil, nil
		}
		return tea.Batch(s.refresh(), s.spinnerCmd()), nil
	case key.Matches(msg, s.keys.Dismiss):
		s.dismissTooltip(screen)
	case key.Matches(msg, s.keys.Review):
		s.store.Dispatch(appstate.ReviewWalkthrough())
	case key.Matches(msg, s.keys.Onboarded):
		s.store.Dispatch(appstate.FirstRunDone())
	case key.Matches(msg, s.keys.NextScreen):
		return nil, &PageNav{PageID: next}
	case key.Matches(msg, s.keys.Help):
		return nil, &PageNav{PageID: helpPageID, Params: screen}
	}
	return nil, nil
}

// renderScreen lays out header, body, tooltip and status line for a screen.
func (s *session) renderScreen(screen, title, body string, width, height int) string {
	if width <= 0 || height <= 0 {
		return "Initializing..."
	}
	st := s.state()

	right := labelStyle.Render("updated " + appstate.FormatDate(appstate.GetDate(st)))
	if appstate.GetLoading(st) {
		right = renderLoadingIndicator() + "  " + right
	}
	left := renderBranding() + " " + titleStyle.Render(title)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	header := left + strings.Repeat(" ", gap) + right

	parts := []string{header, ""}
	if appstate.GetFirstRun(st) {
		parts = append(parts, bannerStyle.Width(width).Render("Welcome to decode! Follow the tips or press o to finish onboarding."), "")
	}
	parts = append(parts, body)
	if tip := s.renderTooltip(screen, width); tip != "" {
		parts = append(parts, "", tip)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	content = lipgloss.NewStyle().Height(max(height-1, 1)).MaxHeight(max(height-1, 1)).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, content, s.renderStatusLine(width))
}

func (s *session) renderStatusLine(width int) string {
	var items []string
	for _, b := range s.keys.screenHelp() {
		h := b.Help()
		items = append(items, h.Key+" "+h.Desc)
	}
	line := strings.Join(items, " · ")
	if lipgloss.Width(line) > width {
		line = s.keys.Help.Help().Key + " help"
	}
	return statusStyle.Width(width).Render(line)
}

func renderTotal(total string) string {
	if total == appstate.TotalFailed {
		return failStyle.Render(total)
	}
	return valueStyle.Render(total)
}
