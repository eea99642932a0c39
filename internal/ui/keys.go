package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Append      key.Binding
	Weighted    key.Binding
	Continue    key.Binding
	Delete      key.Binding
	DeleteAll   key.Binding
	Edit        key.Binding
	Search      key.Binding
	NextBuffer  key.Binding
	PrevBuffer  key.Binding
	AddBuffer   key.Binding
	DropBuffer  key.Binding
	Numbers     key.Binding
	Probability key.Binding
	Help        key.Binding
	Cancel      key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Append:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "append")),
		Weighted:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "sample next")),
		Continue:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "continue")),
		Delete:      key.NewBinding(key.WithKeys("backspace", "d"), key.WithHelp("d", "delete last")),
		DeleteAll:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete all")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit prompt")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextBuffer:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next buffer")),
		PrevBuffer:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev buffer")),
		AddBuffer:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new buffer")),
		DropBuffer:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "close buffer")),
		Numbers:     key.NewBinding(key.WithKeys("#"), key.WithHelp("#", "token numbers")),
		Probability: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "probabilities")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop/quit")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Append, k.Weighted, k.Continue, k.Delete, k.Edit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Append, k.Weighted, k.Continue, k.Cancel},
		{k.Delete, k.DeleteAll, k.Edit, k.Search},
		{k.NextBuffer, k.PrevBuffer, k.AddBuffer, k.DropBuffer},
		{k.Numbers, k.Probability, k.Help, k.Quit},
	}
}
