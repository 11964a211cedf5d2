package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	collapse       key.Binding
	expand         key.Binding
	toggleDone     key.Binding
	addChild       key.Binding
	addEpic        key.Binding
	addQuickTask   key.Binding
	rename         key.Binding
	todoInfo       key.Binding
	grab           key.Binding
	drop           key.Binding
	cancel         key.Binding
	archiveTodo    key.Binding
	restoreTodo    key.Binding
	deleteTodo     key.Binding
	yank           key.Binding
	workspaces     key.Binding
	toggleArchived key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "cursor up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "cursor down")),
		collapse:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "collapse")),
		expand:         key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "expand")),
		toggleDone:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "toggle done")),
		addChild:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new child")),
		addEpic:        key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new epic")),
		addQuickTask:   key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "quick task")),
		rename:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		todoInfo:       key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "details")),
		grab:           key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grab for reorder")),
		drop:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		archiveTodo:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive")),
		restoreTodo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore")),
		deleteTodo:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete subtree")),
		yank:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank title")),
		workspaces:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "workspaces")),
		toggleArchived: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle archived")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addChild, k.toggleDone, k.grab, k.todoInfo, k.workspaces, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.collapse, k.expand, k.grab, k.drop, k.cancel},
		{k.addChild, k.addEpic, k.addQuickTask, k.rename, k.toggleDone, k.todoInfo, k.yank},
		{k.archiveTodo, k.restoreTodo, k.deleteTodo, k.workspaces, k.toggleArchived, k.reload, k.quit},
	}
}
