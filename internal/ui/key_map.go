package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	playlists key.Binding
	favorite  key.Binding
	scroll    key.Binding
	pause     key.Binding
	faster    key.Binding
	slower    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		playlists: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "playlists")),
		favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		scroll:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "auto-scroll")),
		pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.playlists, k.favorite, k.scroll},
		{k.pause, k.faster, k.slower, k.quit},
	}
}
