package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the global keybindings. View-local keys live with the view.
type KeyMap struct {
	// Views
	CountdownView key.Binding
	HistoryView   key.Binding

	// Countdown
	Reset key.Binding

	// General
	Help       key.Binding
	ThemeCycle key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		CountdownView: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "countdown"),
		),
		HistoryView: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "history"),
		),

		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reset"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.CountdownView, k.HistoryView},
		{k.Reset, k.ThemeCycle},
		{k.Help, k.Quit},
	}
}
