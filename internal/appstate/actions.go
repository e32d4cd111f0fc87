package appstate

import "time"

// ActionType names a state transition.
type ActionType string

const (
	ActionFirstRunDone        ActionType = "FIRST_RUN_DONE"
	ActionTooltipShown        ActionType = "TOOLTIP_SHOWN"
	ActionReviewWalkthrough   ActionType = "REVIEW_WALKTHROUGH"
	ActionRefreshStatsRequest ActionType = "REFRESH_STATS_REQUEST"
	ActionRefreshStatsSuccess ActionType = "REFRESH_STATS_SUCCESS"
	ActionRefreshStatsFailure ActionType = "REFRESH_STATS_FAILURE"
	ActionRefreshDate         ActionType = "REFRESH_DATE"
)

// Action is a plain record describing one transition. Only the payload
// fields relevant to Type are set.
type Action struct {
	Type ActionType

	Screen string    // TOOLTIP_SHOWN
	ID     string    // TOOLTIP_SHOWN
	Total  string    // REFRESH_STATS_SUCCESS
	Err    error     // REFRESH_STATS_FAILURE
	Date   time.Time // REFRESH_DATE
}

func FirstRunDone() Action {
	return Action{Type: ActionFirstRunDone}
}

// TooltipShown records that tooltip id was displayed (and dismissed) on screen.
func TooltipShown(screen, id string) Action {
	return Action{Type: ActionTooltipShown, Screen: screen, ID: id}
}

func ReviewWalkthrough() Action {
	return Action{Type: ActionReviewWalkthrough}
}

func RefreshStatsRequest() Action {
	return Action{Type: ActionRefreshStatsRequest}
}

func RefreshStatsSuccess(total string) Action {
	return Action{Type: ActionRefreshStatsSuccess, Total: total}
}

func RefreshStatsFailure(err error) Action {
	return Action{Type: ActionRefreshStatsFailure, Err: err}
}

func RefreshDate(date time.Time) Action {
	return Action{Type: ActionRefreshDate, Date: date}
}

// Clock supplies wall-clock time for REFRESH_DATE.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// RefreshDateNow stamps a REFRESH_DATE action with the clock's current time.
func RefreshDateNow(clock Clock) Action {
	if clock == nil {
		clock = SystemClock
	}
	return RefreshDate(clock.Now())
}
