package appstate

import "maps"

// Reducer is the only code that computes new States. It never mutates its
// input: untouched fields, including the tooltip mapping, are shared.
type Reducer struct {
	seq *Sequencer
}

// NewReducer returns a Reducer for the walkthrough described by seq.
func NewReducer(seq *Sequencer) *Reducer {
	return &Reducer{seq: seq}
}

// Sequencer returns the walkthrough the reducer advances through.
func (r *Reducer) Sequencer() *Sequencer { return r.seq }

// Reduce applies a to s. Unknown action types return s unchanged.
func (r *Reducer) Reduce(s State, a Action) State {
	switch a.Type {
	case ActionFirstRunDone:
		s.FirstRun = false
		return s

	case ActionTooltipShown:
		next, err := r.seq.Next(a.Screen, a.ID)
		if err != nil {
			// Unknown screens have no walkthrough to advance.
			return s
		}
		t := maps.Clone(s.ShowTooltip)
		if t == nil {
			t = make(Tooltips, 1)
		}
		t[a.Screen] = next
		return s.withTooltips(t)

	case ActionReviewWalkthrough:
		s = s.withTooltips(r.seq.Reset())
		s.FirstRun = true
		return s

	case ActionRefreshStatsRequest:
		s.Loading = true
		return s

	case ActionRefreshStatsSuccess:
		s.Total = a.Total
		s.Loading = false
		return s

	case ActionRefreshStatsFailure:
		s.Total = TotalFailed
		s.Loading = false
		return s

	case ActionRefreshDate:
		s.Date = a.Date
		return s

	default:
		return s
	}
}
