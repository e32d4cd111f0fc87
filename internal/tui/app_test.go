package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/decodeproject/decode/internal/appstate"
	"github.com/decodeproject/decode/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type stubClient struct {
	mu    sync.Mutex
	total string
	err   error
	calls int
	attrs []model.AttributeCount
}

func (c *stubClient) GetStats(_ context.Context) (model.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return model.Stats{}, c.err
	}
	return model.Stats{Total: c.total}, nil
}

func (c *stubClient) IssuedByAttribute(_ context.Context) ([]model.AttributeCount, error) {
	return c.attrs, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

type testApp struct {
	*App
	actions []appstate.ActionType
}

func newTestApp(t *testing.T, client model.StatsClient) *testApp {
	t.Helper()
	seq := appstate.MustNewSequencer(appstate.DefaultSequences())
	store := appstate.NewStore(appstate.NewReducer(seq), appstate.InitialState(seq))
	ta := &testApp{}
	store.Subscribe(func(_, _ appstate.State, a appstate.Action) {
		ta.actions = append(ta.actions, a.Type)
	})
	ta.App = NewApp(Options{
		Store:          store,
		Client:         client,
		Clock:          fixedClock{testNow},
		UpdateInterval: time.Hour,
	})
	ta.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return ta
}

// completeFetch runs the pending fetch synchronously and feeds its result back.
func (ta *testApp) completeFetch() {
	ta.Update(ta.s.fetchCmd()())
}

func (ta *testApp) state() appstate.State { return ta.s.state() }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestForegroundRefreshesDateAndStats(t *testing.T) {
	app := newTestApp(t, &stubClient{total: "17"})

	_, cmd := app.Update(foregroundMsg{})
	if cmd == nil {
		t.Fatal("foreground returned no command")
	}
	want := []appstate.ActionType{appstate.ActionRefreshDate, appstate.ActionRefreshStatsRequest}
	if !equalActions(app.actions, want) {
		t.Fatalf("actions = %v, want %v", app.actions, want)
	}
	st := app.state()
	if !st.Loading {
		t.Error("Loading = false after request")
	}
	if !st.Date.Equal(testNow) {
		t.Errorf("Date = %v, want %v", st.Date, testNow)
	}

	app.completeFetch()
	st = app.state()
	if st.Loading || st.Total != "17" {
		t.Errorf("after success: Loading=%v Total=%q", st.Loading, st.Total)
	}
	if app.s.history.len() != 1 {
		t.Errorf("history len = %d, want 1", app.s.history.len())
	}
	if view := app.View(); !strings.Contains(view, "17") || !strings.Contains(view, "09/03/2024 14:05") {
		t.Errorf("view missing total or date:\n%s", view)
	}
}

func TestTickSkipsWhileLoading(t *testing.T) {
	app := newTestApp(t, &stubClient{total: "1"})
	app.Update(foregroundMsg{})
	before := len(app.actions)

	_, cmd := app.Update(TickMsg(testNow))
	if cmd == nil {
		t.Fatal("tick was not rescheduled")
	}
	if len(app.actions) != before {
		t.Errorf("tick dispatched %v while loading", app.actions[before:])
	}

	app.completeFetch()
	app.Update(TickMsg(testNow))
	tail := app.actions[len(app.actions)-2:]
	if !equalActions(tail, []appstate.ActionType{appstate.ActionRefreshDate, appstate.ActionRefreshStatsRequest}) {
		t.Errorf("tick after completion dispatched %v", tail)
	}
}

func TestFocusTriggersRefresh(t *testing.T) {
	app := newTestApp(t, &stubClient{total: "1"})

	app.Update(tea.FocusMsg{})
	if !app.state().Loading {
		t.Error("focus did not start a refresh")
	}
}

func TestFailureShowsFailedTotal(t *testing.T) {
	app := newTestApp(t, &stubClient{err: errors.New("connection refused")})

	app.Update(runes("r"))
	app.completeFetch()

	st := app.state()
	if st.Total != appstate.TotalFailed || st.Loading {
		t.Errorf("after failure: Total=%q Loading=%v", st.Total, st.Loading)
	}
	if !strings.Contains(app.View(), appstate.TotalFailed) {
		t.Error("view does not show the failed total")
	}
	if app.s.history.len() != 0 {
		t.Error("failed fetch recorded in history")
	}
}

func TestRefreshKeyIgnoredWhileLoading(t *testing.T) {
	client := &stubClient{total: "3"}
	app := newTestApp(t, client)

	app.Update(runes("r"))
	n := len(app.actions)
	_, cmd := app.Update(runes("r"))
	if cmd != nil || len(app.actions) != n {
		t.Errorf("second refresh while loading dispatched %v", app.actions[n:])
	}
}

func TestDismissWalksStatsTooltips(t *testing.T) {
	app := newTestApp(t, &stubClient{})
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	if !strings.Contains(app.View(), "restart tips") {
		t.Fatal("initial view has no tooltip")
	}

	wantSeq := []string{appstate.TooltipNext, appstate.TooltipNone}
	for _, want := range wantSeq {
		app.Update(enter)
		if got := app.state().ShowTooltip[appstate.ScreenDummy]; got != want {
			t.Fatalf("ShowTooltip[dummy] = %q, want %q", got, want)
		}
	}
	if got := app.state().ShowTooltip[appstate.ScreenDummyNext]; got != appstate.TooltipCrash {
		t.Errorf("other screen changed to %q", got)
	}
	if strings.Contains(app.View(), "restart tips") {
		t.Error("tooltip still rendered after walkthrough ended")
	}

	n := len(app.actions)
	app.Update(enter)
	if len(app.actions) != n {
		t.Error("dismiss dispatched with no pending tooltip")
	}
}

func TestReviewAndOnboarding(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	app.Update(runes("o"))
	if app.state().FirstRun {
		t.Fatal("FirstRun still true after o")
	}
	if strings.Contains(app.View(), "Welcome") {
		t.Error("onboarding banner shown after onboarding finished")
	}

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(runes("w"))
	st := app.state()
	if !st.FirstRun {
		t.Error("FirstRun false after review")
	}
	if st.ShowTooltip[appstate.ScreenDummy] != appstate.TooltipRefresh {
		t.Errorf("tooltips not reset: %v", st.ShowTooltip)
	}
}

func TestPageNavigation(t *testing.T) {
	app := newTestApp(t, &stubClient{attrs: []model.AttributeCount{{AttributeID: "email", Count: 4}}})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.ActivePage() != appstate.ScreenDummyNext {
		t.Fatalf("active page = %q after tab", app.ActivePage())
	}
	if cmd == nil {
		t.Fatal("details page did not request attributes")
	}
	app.Update(app.s.loadAttributesCmd()())
	if !strings.Contains(app.View(), "email") {
		t.Error("details view missing attribute breakdown")
	}

	app.Update(runes("?"))
	if app.ActivePage() != helpPageID {
		t.Fatalf("active page = %q after ?", app.ActivePage())
	}
	if !strings.Contains(app.View(), "KEYS") {
		t.Error("help view missing key list")
	}
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if app.ActivePage() != appstate.ScreenDummyNext {
		t.Errorf("help returned to %q, want %q", app.ActivePage(), appstate.ScreenDummyNext)
	}

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if app.ActivePage() != appstate.ScreenDummy {
		t.Errorf("active page = %q after second tab", app.ActivePage())
	}
}

func TestDetailsDismissUsesItsOwnScreen(t *testing.T) {
	app := newTestApp(t, &stubClient{})
	app.Update(tea.KeyMsg{Type: tea.KeyTab})

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	st := app.state()
	if st.ShowTooltip[appstate.ScreenDummyNext] != appstate.TooltipNone {
		t.Errorf("dummyNext = %q, want none", st.ShowTooltip[appstate.ScreenDummyNext])
	}
	if st.ShowTooltip[appstate.ScreenDummy] != appstate.TooltipRefresh {
		t.Errorf("dummy = %q, want refresh", st.ShowTooltip[appstate.ScreenDummy])
	}
}

func TestQuit(t *testing.T) {
	app := newTestApp(t, &stubClient{})

	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := app.Update(msg)
		if cmd == nil {
			t.Fatalf("%s returned no command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", msg)
		}
	}
}

func TestSpinnerStopsAfterFetch(t *testing.T) {
	app := newTestApp(t, &stubClient{total: "5"})

	app.Update(runes("r"))
	if !app.s.spinning {
		t.Fatal("spinner not started for refresh")
	}
	if _, cmd := app.Update(SpinnerTickMsg{}); cmd == nil {
		t.Error("spinner stopped while loading")
	}

	app.completeFetch()
	if _, cmd := app.Update(SpinnerTickMsg{}); cmd != nil {
		t.Error("spinner kept ticking after fetch completed")
	}
	if app.s.spinning {
		t.Error("spinning flag not cleared")
	}
}

func equalActions(got, want []appstate.ActionType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
