package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit        key.Binding
	escape      key.Binding
	nextPage    key.Binding
	prevPage    key.Binding
	toggleFocus key.Binding
	nextField   key.Binding
	prevField   key.Binding
	submit      key.Binding
	send        key.Binding
	status      key.Binding
	panic       key.Binding
	adminExit   key.Binding
	listUp      key.Binding
	listDown    key.Binding
	toggle      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		nextPage:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		prevPage:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev page")),
		toggleFocus: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "form/list")),
		nextField:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next field")),
		prevField:   key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "prev field")),
		submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		send:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		status:      key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "status")),
		panic:       key.NewBinding(key.WithKeys("f9"), key.WithHelp("f9", "panic")),
		adminExit:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "exit admin")),
		listUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		listDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	}
}

func hints(bindings ...key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, h.Key+" "+h.Desc)
	}
	return out
}
