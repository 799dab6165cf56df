package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	next     key.Binding
	sections key.Binding
	add      key.Binding
	edit     key.Binding
	remove   key.Binding
	collect  key.Binding
	drop     key.Binding
	tab      key.Binding
	export   key.Binding
	refresh  key.Binding
	logout   key.Binding
	yes      key.Binding
	no       key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		next:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		sections: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "sections")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		collect:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add to collection")),
		drop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove from collection")),
		tab:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next tab")),
		export:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export all")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.sections, k.add, k.edit, k.remove, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.sections, k.refresh, k.tab, k.logout},
		{k.add, k.edit, k.remove},
		{k.collect, k.drop, k.export},
		{k.help, k.quit},
	}
}
