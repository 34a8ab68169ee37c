package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the deck key bindings.
type KeyMap struct {
	Reject  key.Binding
	Accept  key.Binding
	Rewind  key.Binding
	Refresh key.Binding
	Dismiss key.Binding
	Amount  key.Binding
	Wallet  key.Binding
	Quit    key.Binding

	// Prompt
	Submit key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Reject: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "pass"),
		),
		Accept: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "buy"),
		),
		Rewind: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "keep swiping"),
		),
		Amount: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "amount"),
		),
		Wallet: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "wallet"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k KeyMap) deckHelp() []key.Binding {
	return []key.Binding{k.Reject, k.Accept, k.Rewind, k.Refresh, k.Amount, k.Wallet, k.Quit}
}

func (k KeyMap) promptHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}
