package appstate

import (
	"reflect"
	"sync"
	"time"
)

func GetTotal(s State) string { return s.Total }

func GetDate(s State) time.Time { return s.Date }

func GetLoading(s State) bool { return s.Loading }

func GetFirstRun(s State) bool { return s.FirstRun }

// FormatDate renders a refresh date for display, DateUnset when never set.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return DateUnset
	}
	return t.Format("02/01/2006 15:04")
}

// TooltipSelector projects the pending tooltip of one screen. The projection
// is recomputed only when the State carries a different tooltip mapping.
type TooltipSelector struct {
	screen string

	mu    sync.Mutex
	rev   uint64
	seen  Tooltips // held so its address cannot be reused by a newer mapping
	value string
	hits  int
}

// ShowTooltipSelector returns a memoised selector for screen.
func ShowTooltipSelector(screen string) *TooltipSelector {
	return &TooltipSelector{screen: screen}
}

// Select returns the tooltip id pending on the selector's screen, or "" when
// the screen has no entry in the mapping.
func (ts *TooltipSelector) Select(s State) string {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if s.ShowTooltip != nil && s.tooltipRev == ts.rev && sameMapping(s.ShowTooltip, ts.seen) {
		ts.hits++
		return ts.value
	}
	ts.rev = s.tooltipRev
	ts.seen = s.ShowTooltip
	ts.value = s.ShowTooltip[ts.screen]
	return ts.value
}

func sameMapping(a, b Tooltips) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

// Screen returns the screen this selector projects.
func (ts *TooltipSelector) Screen() string { return ts.screen }
