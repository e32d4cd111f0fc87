package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// foregroundMsg is sent when the app starts or regains terminal focus.
type foregroundMsg struct{}

// App is the top-level Bubble Tea model. It owns the polling loop and the
// store plumbing and routes everything else to the active page.
type App struct {
	s          *session
	pages      map[string]Page
	activePage string
	width      int
	height     int
}

// NewApp builds the stats, details and help pages around opts. The stats
// page is active first.
func NewApp(opts Options) *App {
	s := newSession(opts)
	stats := newStatsPage(s)
	return newApp(s, stats, newDetailsPage(s), newHelpPage(s, stats.ID()))
}

func newApp(s *session, pages ...Page) *App {
	pageMap := make(map[string]Page, len(pages))
	var firstID string
	for i, p := range pages {
		pageMap[p.ID()] = p
		if i == 0 {
			firstID = p.ID()
		}
	}
	return &App{
		s:          s,
		pages:      pageMap,
		activePage: firstID,
	}
}

// ActivePage returns the id of the page currently shown.
func (a *App) ActivePage() string { return a.activePage }

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		func() tea.Msg { return foregroundMsg{} },
		a.s.tick(),
	}
	if p, ok := a.pages[a.activePage]; ok {
		cmds = append(cmds, p.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if key.Matches(msg, a.s.keys.ForceQuit) || key.Matches(msg, a.s.keys.Quit) {
			return a, tea.Quit
		}

	case foregroundMsg, tea.FocusMsg:
		return a, tea.Batch(a.s.poll(), a.s.spinnerCmd())

	case TickMsg:
		return a, tea.Batch(a.s.poll(), a.s.spinnerCmd(), a.s.tick())

	case actionMsg:
		a.s.apply(msg)
		return a, nil

	case attributesLoadedMsg:
		a.s.attributes, a.s.attributesErr = msg.counts, msg.err
		return a, nil

	case SpinnerTickMsg:
		return a, a.s.handleSpinnerTick()
	}

	p, ok := a.pages[a.activePage]
	if !ok {
		return a, nil
	}

	cmd, nav := p.Update(msg)

	if nav != nil {
		if next, exists := a.pages[nav.PageID]; exists {
			if r, ok := next.(paramReceiver); ok {
				r.SetParams(nav.Params)
			}
			a.activePage = nav.PageID
			return a, tea.Batch(cmd, next.Init())
		}
	}

	return a, cmd
}

func (a *App) View() string {
	if p, ok := a.pages[a.activePage]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
