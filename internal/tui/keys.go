package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Back       key.Binding
	Prev       key.Binding
	Next       key.Binding
	Regenerate key.Binding
	Edit       key.Binding
	Retry      key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back to ideas"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous step"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", " "),
			key.WithHelp("→/l", "next step"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new ideas"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit prompt"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ideasKeys and cookingKeys feed the help line for their screens
type ideasKeys keyMap

func (k ideasKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Regenerate, k.Edit, k.Quit}
}

func (k ideasKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type cookingKeys keyMap

func (k cookingKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Back, k.Retry, k.Quit}
}

func (k cookingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
