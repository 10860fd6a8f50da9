package sim

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Ok     key.Binding
	Cancel key.Binding
	Warmer key.Binding
	Cooler key.Binding
	Wetter key.Binding
	Drier  key.Binding
	Fault  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Ok, k.Cancel, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Ok, k.Cancel},
		{k.Warmer, k.Cooler, k.Wetter, k.Drier, k.Fault},
		{k.Help, k.Quit},
	}
}

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
		Ok: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "ok"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "cancel"),
		),
		Warmer: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "temp +0.5"),
		),
		Cooler: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "temp -0.5"),
		),
		Wetter: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "humidity +1"),
		),
		Drier: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "humidity -1"),
		),
		Fault: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "sensor fault"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
