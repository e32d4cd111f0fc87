package appstate

import (
	"sync/atomic"
	"time"
)

// Sentinel values shown in place of real data.
const (
	TotalUnknown = "---" // no fetch has completed yet
	TotalFailed  = "XXX" // the last fetch failed
	DateUnset    = "---"
	TooltipNone  = "none" // the screen's walkthrough is exhausted
)

// Tooltips maps a screen name to the id of the tooltip pending on it.
// A Tooltips value held by a State is never mutated; the reducer replaces it.
type Tooltips map[string]string

// State is the app slice: onboarding flag, walkthrough position and the
// last polled issuance statistic.
type State struct {
	FirstRun    bool
	ShowTooltip Tooltips
	Total       string
	Loading     bool
	Date        time.Time

	// tooltipRev identifies the ShowTooltip mapping for memoised selectors.
	tooltipRev uint64
}

var tooltipRevs atomic.Uint64

func nextTooltipRev() uint64 {
	return tooltipRevs.Add(1)
}

// withTooltips returns s carrying a freshly stamped tooltip mapping.
func (s State) withTooltips(t Tooltips) State {
	s.ShowTooltip = t
	s.tooltipRev = nextTooltipRev()
	return s
}

// InitialState builds the process-start state for the given walkthrough.
func InitialState(seq *Sequencer) State {
	s := State{
		FirstRun: true,
		Total:    TotalUnknown,
	}
	return s.withTooltips(seq.Reset())
}
