package tui

import (
	"strings"

	"github.com/decodeproject/decode/internal/appstate"

	"github.com/charmbracelet/lipgloss"
)

// DefaultTooltipText returns the help text for the built-in walkthrough ids.
func DefaultTooltipText() map[string]string {
	return map[string]string{
		appstate.TooltipRefresh: "Press r to fetch the latest issuance total. It also refreshes on its own every few seconds.",
		appstate.TooltipNext:    "Press tab to open the details screen with the history of fetched totals.",
		appstate.TooltipCrash:   "If the issuer is unreachable the total shows XXX until the next successful refresh.",
	}
}

// renderTooltip renders the pending walkthrough tip for screen, or "" when
// the walkthrough of that screen is exhausted.
func (s *session) renderTooltip(screen string, width int) string {
	id := s.tooltipFor(screen)
	if id == "" || id == appstate.TooltipNone {
		return ""
	}
	text, ok := s.tooltipText[id]
	if !ok {
		text, ok = s.tooltipText[strings.ToLower(id)]
	}
	if !ok {
		text = id
	}
	hint := labelStyle.Render("enter: got it · w: restart tips")
	body := lipgloss.JoinVertical(lipgloss.Left, text, hint)
	return tooltipStyle.Width(max(width-4, 20)).Render(body)
}
