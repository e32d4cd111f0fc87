package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

type historyPoint struct {
	at    time.Time
	total int64
}

// totalsHistory is a bounded ring of successfully fetched totals.
type totalsHistory struct {
	size   int
	points []historyPoint
}

func newTotalsHistory(size int) *totalsHistory {
	if size <= 0 {
		size = 1
	}
	return &totalsHistory{size: size}
}

// push records total if it is a decimal count. It reports whether a point was added.
func (h *totalsHistory) push(total string, at time.Time) bool {
	n, err := strconv.ParseInt(strings.TrimSpace(total), 10, 64)
	if err != nil {
		return false
	}
	h.points = append(h.points, historyPoint{at: at, total: n})
	if over := len(h.points) - h.size; over > 0 {
		h.points = h.points[over:]
	}
	return true
}

func (h *totalsHistory) len() int { return len(h.points) }

var (
	historyBarStyle   = lipgloss.NewStyle().Foreground(ColorBlue).Background(ColorBlue)
	historyEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("240"))
)

// render draws the history as a bar chart, newest on the right.
func (h *totalsHistory) render(width, height int) string {
	if h.len() == 0 {
		return labelStyle.Render("No totals fetched yet.")
	}

	chartHeight := max(height-2, 3)
	chartWidth := max(width, 20)
	maxBars := chartWidth / 2

	start := max(0, len(h.points)-maxBars)
	visible := h.points[start:]

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for i := 0; i < maxBars-len(visible); i++ {
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "EMPTY", Value: 0, Style: historyEmptyStyle}},
		})
	}
	for _, p := range visible {
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "TOTAL", Value: float64(p.total), Style: historyBarStyle}},
		})
	}
	bc.Draw()

	first, last := visible[0], visible[len(visible)-1]
	legend := labelStyle.Render(fmt.Sprintf("%s → %s  latest %d",
		first.at.Format("15:04:05"), last.at.Format("15:04:05"), last.total))

	return lipgloss.JoinVertical(lipgloss.Left, bc.View(), legend)
}
