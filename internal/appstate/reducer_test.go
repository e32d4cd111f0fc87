package appstate

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/decodeproject/decode/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReducer(t *testing.T) (*Reducer, State) {
	t.Helper()
	seq, err := NewSequencer(DefaultSequences())
	require.NoError(t, err)
	return NewReducer(seq), InitialState(seq)
}

func sameMap(a, b Tooltips) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestInitialState(t *testing.T) {
	_, s := newTestReducer(t)

	assert.True(t, s.FirstRun)
	assert.False(t, s.Loading)
	assert.Equal(t, TotalUnknown, s.Total)
	assert.True(t, s.Date.IsZero())
	assert.Equal(t, Tooltips{ScreenDummy: TooltipRefresh, ScreenDummyNext: TooltipCrash}, s.ShowTooltip)
}

func TestReduce_UnknownActionIsIdentity(t *testing.T) {
	r, s := newTestReducer(t)

	for _, typ := range []ActionType{"", "SOMETHING_ELSE", "first_run_done"} {
		next := r.Reduce(s, Action{Type: typ, Total: "99"})
		assert.Equal(t, s, next, "action %q", typ)
		assert.True(t, sameMap(s.ShowTooltip, next.ShowTooltip), "action %q replaced the tooltip mapping", typ)
	}
}

func TestReduce_FirstRunDone(t *testing.T) {
	r, s := newTestReducer(t)

	once := r.Reduce(s, FirstRunDone())
	assert.False(t, once.FirstRun)
	assert.True(t, s.FirstRun, "input state mutated")

	twice := r.Reduce(once, FirstRunDone())
	assert.Equal(t, once, twice)
}

func TestReduce_TooltipShown(t *testing.T) {
	r, s := newTestReducer(t)

	next := r.Reduce(s, TooltipShown(ScreenDummy, TooltipRefresh))
	assert.Equal(t, TooltipNext, next.ShowTooltip[ScreenDummy])
	assert.Equal(t, TooltipCrash, next.ShowTooltip[ScreenDummyNext])
	assert.Equal(t, TooltipRefresh, s.ShowTooltip[ScreenDummy], "input mapping mutated")
	assert.False(t, sameMap(s.ShowTooltip, next.ShowTooltip))

	done := r.Reduce(next, TooltipShown(ScreenDummy, TooltipNext))
	assert.Equal(t, TooltipNone, done.ShowTooltip[ScreenDummy])

	stale := r.Reduce(done, TooltipShown(ScreenDummy, "unknown"))
	assert.Equal(t, TooltipNone, stale.ShowTooltip[ScreenDummy])
}

func TestReduce_TooltipShownUnknownScreen(t *testing.T) {
	r, s := newTestReducer(t)

	next := r.Reduce(s, TooltipShown("settings", TooltipRefresh))
	assert.Equal(t, s, next)
	assert.True(t, sameMap(s.ShowTooltip, next.ShowTooltip))
}

func TestReduce_ReviewWalkthrough(t *testing.T) {
	r, s := newTestReducer(t)

	s = r.Reduce(s, FirstRunDone())
	s = r.Reduce(s, TooltipShown(ScreenDummy, TooltipRefresh))
	s = r.Reduce(s, TooltipShown(ScreenDummy, TooltipNext))
	s = r.Reduce(s, TooltipShown(ScreenDummyNext, TooltipCrash))
	require.Equal(t, Tooltips{ScreenDummy: TooltipNone, ScreenDummyNext: TooltipNone}, s.ShowTooltip)

	reviewed := r.Reduce(s, ReviewWalkthrough())
	assert.True(t, reviewed.FirstRun)
	assert.Equal(t, Tooltips{ScreenDummy: TooltipRefresh, ScreenDummyNext: TooltipCrash}, reviewed.ShowTooltip)

	// Independent of the prior mapping, even a hand-built one.
	odd := State{ShowTooltip: Tooltips{"gone": "x"}}
	assert.Equal(t, Tooltips{ScreenDummy: TooltipRefresh, ScreenDummyNext: TooltipCrash}, r.Reduce(odd, ReviewWalkthrough()).ShowTooltip)
}

func TestReduce_RefreshLifecycle(t *testing.T) {
	r, s := newTestReducer(t)

	loading := r.Reduce(s, RefreshStatsRequest())
	require.True(t, loading.Loading)
	assert.Equal(t, TotalUnknown, loading.Total)

	ok := r.Reduce(loading, RefreshStatsSuccess("42"))
	assert.False(t, ok.Loading)
	assert.Equal(t, "42", ok.Total)

	failed := r.Reduce(r.Reduce(ok, RefreshStatsRequest()), RefreshStatsFailure(errors.New("boom")))
	assert.False(t, failed.Loading)
	assert.Equal(t, TotalFailed, failed.Total)
	assert.True(t, sameMap(s.ShowTooltip, failed.ShowTooltip))
}

type failingClient struct{ err error }

func (c failingClient) GetStats(context.Context) (model.Stats, error) {
	return model.Stats{}, c.err
}

// SUCCESS stores the payload as given. Non-empty totals are guaranteed by the
// stats clients, which report an empty reply as an error, and an error
// becomes FAILURE in FetchStats.
func TestReduce_SuccessStoresPayloadVerbatim(t *testing.T) {
	r, s := newTestReducer(t)

	got := r.Reduce(r.Reduce(s, RefreshStatsRequest()), RefreshStatsSuccess(" 007 "))
	assert.Equal(t, " 007 ", got.Total)

	failed := r.Reduce(r.Reduce(s, RefreshStatsRequest()), FetchStats(context.Background(), failingClient{err: errors.New("stats reply has empty total")}))
	assert.Equal(t, TotalFailed, failed.Total)
}

func TestReduce_RefreshDate(t *testing.T) {
	r, s := newTestReducer(t)

	at := time.Date(2019, 6, 1, 10, 30, 0, 123, time.FixedZone("CEST", 2*60*60))
	next := r.Reduce(s, RefreshDate(at))
	assert.True(t, next.Date.Equal(at))
	assert.Equal(t, at.Location(), next.Date.Location())
	assert.Equal(t, at, next.Date)
}

func TestRefreshDateNow(t *testing.T) {
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	a := RefreshDateNow(fixedClock(at))
	assert.Equal(t, ActionRefreshDate, a.Type)
	assert.Equal(t, at, a.Date)

	assert.False(t, RefreshDateNow(nil).Date.IsZero())
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
