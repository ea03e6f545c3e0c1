package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the live status dashboard.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	BrightUp    key.Binding
	BrightDown  key.Binding
	Silent      key.Binding
	Refresh     key.Binding
	Connect     key.Binding
	Quit        key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the dashboard's default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "run"),
		),
		BrightUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "brighter"),
		),
		BrightDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "dimmer"),
		),
		Silent: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle silent"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh battery"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns keybindings to show in the collapsed help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Connect, k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.BrightUp, k.BrightDown, k.Silent},
		{k.Connect, k.Refresh, k.Quit},
	}
}
