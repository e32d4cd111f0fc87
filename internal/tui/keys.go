package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding

	// Screens
	NextScreen key.Binding
	Refresh    key.Binding
	Dismiss    key.Binding
	Review     key.Binding
	Onboarded  key.Binding

	// Help viewport
	Up   key.Binding
	Down key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),

		NextScreen: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next screen"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "got it"),
		),
		Review: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "review walkthrough"),
		),
		Onboarded: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "finish onboarding"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// screenHelp is the short help rendered in every screen's status line.
func (k KeyMap) screenHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.NextScreen, k.Dismiss, k.Review, k.Help, k.Quit}
}
