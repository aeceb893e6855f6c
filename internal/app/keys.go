package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the player's key bindings.
type KeyMap struct {
	Play    key.Binding
	Back    key.Binding
	Forward key.Binding
	Start   key.Binding
	Open    key.Binding
	Slower  key.Binding
	Faster  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Play:    key.NewBinding(key.WithKeys(" ", "k"), key.WithHelp("space", "play/pause")),
		Back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "-5s")),
		Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "+5s")),
		Start:   key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "start")),
		Open:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "open note")),
		Slower:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-/+", "speed")),
		Faster:  key.NewBinding(key.WithKeys("+", "=")),
		Quit:    key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Back, k.Forward, k.Start, k.Open, k.Slower, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
