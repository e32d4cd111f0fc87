package tui

import (
	"context"
	"time"

	"github.com/decodeproject/decode/internal/appstate"
	"github.com/decodeproject/decode/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Options configures the TUI.
type Options struct {
	Store          *appstate.Store
	Client         model.StatsClient
	Clock          appstate.Clock
	UpdateInterval time.Duration
	RequestTimeout time.Duration
	TooltipText    map[string]string
	HistorySize    int
	Logger         *zap.Logger
}

// TickMsg is sent on each polling interval.
type TickMsg time.Time

// actionMsg carries an action produced off the update loop back to the store.
type actionMsg struct {
	action appstate.Action
}

type attributesLoadedMsg struct {
	counts []model.AttributeCount
	err    error
}

// attributeLister is implemented by stats clients that can break the total
// down per attribute.
type attributeLister interface {
	IssuedByAttribute(ctx context.Context) ([]model.AttributeCount, error)
}

// session is the state shared by every page: the app-state store, the stats
// client and the bits of view state that survive page switches.
type session struct {
	store          *appstate.Store
	client         model.StatsClient
	clock          appstate.Clock
	updateInterval time.Duration
	requestTimeout time.Duration
	tooltipText    map[string]string
	tooltips       map[string]*appstate.TooltipSelector
	history        *totalsHistory
	attributes     []model.AttributeCount
	attributesErr  error
	keys           KeyMap
	logger         *zap.Logger
	spinning       bool
}

func newSession(opts Options) *session {
	if opts.Clock == nil {
		opts.Clock = appstate.SystemClock
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = model.DefaultUpdateInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = model.DefaultRequestTimeout
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = model.DefaultHistorySize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	text := DefaultTooltipText()
	for id, t := range opts.TooltipText {
		text[id] = t
	}

	s := &session{
		store:          opts.Store,
		client:         opts.Client,
		clock:          opts.Clock,
		updateInterval: opts.UpdateInterval,
		requestTimeout: opts.RequestTimeout,
		tooltipText:    text,
		tooltips:       make(map[string]*appstate.TooltipSelector),
		history:        newTotalsHistory(opts.HistorySize),
		keys:           DefaultKeyMap(),
		logger:         opts.Logger.Named("tui"),
	}
	s.store.Subscribe(func(prev, next appstate.State, a appstate.Action) {
		s.logger.Debug("dispatch",
			zap.String("action", string(a.Type)),
			zap.Bool("loading", next.Loading),
			zap.String("total", next.Total),
		)
	})
	return s
}

func (s *session) state() appstate.State {
	return s.store.State()
}

// tooltipFor returns the current tooltip id for screen through a memoized selector.
func (s *session) tooltipFor(screen string) string {
	sel, ok := s.tooltips[screen]
	if !ok {
		sel = appstate.ShowTooltipSelector(screen)
		s.tooltips[screen] = sel
	}
	return sel.Select(s.state())
}

// refresh dispatches the request synchronously and returns the fetch as a command.
func (s *session) refresh() tea.Cmd {
	s.store.Dispatch(appstate.RefreshStatsRequest())
	return s.fetchCmd()
}

func (s *session) fetchCmd() tea.Cmd {
	client, timeout := s.client, s.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionMsg{action: appstate.FetchStats(ctx, client)}
	}
}

// poll refreshes the date and, unless a fetch is already in flight, the total.
func (s *session) poll() tea.Cmd {
	if appstate.GetLoading(s.state()) {
		return nil
	}
	s.store.Dispatch(appstate.RefreshDateNow(s.clock))
	return s.refresh()
}

func (s *session) tick() tea.Cmd {
	return tea.Tick(s.updateInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (s *session) apply(msg actionMsg) {
	s.store.Dispatch(msg.action)
	if msg.action.Type == appstate.ActionRefreshStatsSuccess {
		s.history.push(msg.action.Total, s.clock.Now())
	}
	if msg.action.Type == appstate.ActionRefreshStatsFailure {
		s.logger.Warn("stats refresh failed", zap.Error(msg.action.Err))
	}
}

// spinnerCmd starts the spinner ticker if a fetch is in flight and none is running.
func (s *session) spinnerCmd() tea.Cmd {
	if s.spinning || !appstate.GetLoading(s.state()) {
		return nil
	}
	s.spinning = true
	return spinnerTick()
}

func (s *session) handleSpinnerTick() tea.Cmd {
	if !appstate.GetLoading(s.state()) {
		s.spinning = false
		return nil
	}
	return spinnerTick()
}

func (s *session) loadAttributesCmd() tea.Cmd {
	lister, ok := s.client.(attributeLister)
	if !ok {
		return nil
	}
	timeout := s.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		counts, err := lister.IssuedByAttribute(ctx)
		return attributesLoadedMsg{counts: counts, err: err}
	}
}

// dismissTooltip marks the screen's current tooltip as shown.
func (s *session) dismissTooltip(screen string) {
	id := s.tooltipFor(screen)
	if id == "" || id == appstate.TooltipNone {
		return
	}
	s.store.Dispatch(appstate.TooltipShown(screen, id))
}
