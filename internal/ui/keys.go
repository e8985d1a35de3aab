package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Refresh    key.Binding
	Diagnostic key.Binding
	Edit       key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Diagnostic: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "diagnostic")),
	Edit:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "max AU")),
	Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Diagnostic, k.Edit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Confirm, k.Cancel}}
}
