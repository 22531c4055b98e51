package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	Male   key.Binding
	Female key.Binding
	Cycle  key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		All:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Male:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "male")),
		Female: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "female")),
		Cycle:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Cycle, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.All, k.Male, k.Female, k.Cycle},
		{k.Reload, k.Quit},
	}
}
