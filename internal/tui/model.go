package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	EnsureDefaultWorkspace(context.Context) (domain.Workspace, error)
	ListWorkspaces(context.Context) ([]domain.Workspace, error)
	ActiveWorkspace(context.Context) (domain.Workspace, error)
	SetActiveWorkspace(context.Context, string) error
	CreateWorkspace(context.Context, string) (domain.Workspace, error)
	DeleteWorkspace(context.Context, string) error
	ComposeTree(context.Context, string) ([]*app.TreeNode, error)
	ArchivedTodos(context.Context, string) ([]domain.Todo, error)
	CreateTodo(context.Context, app.CreateTodoInput) (domain.Todo, error)
	ToggleTodo(context.Context, string, string) error
	RenameTodo(context.Context, string, string, string) error
	ArchiveTodo(context.Context, string, string) error
	RestoreTodo(context.Context, string, string) error
	DeleteTodo(context.Context, string, string) error
	ReorderTodos(context.Context, string, string, int, int) error
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTodo
	modeRenameTodo
	modeTodoInfo
	modeWorkspacePicker
	modeAddWorkspace
	modeConfirmDelete
)

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	treeFields   TreeFieldConfig
	showArchived bool

	workspaces      []domain.Workspace
	activeWorkspace domain.Workspace
	roots           []*app.TreeNode
	archived        []domain.Todo

	cursor    int
	collapsed map[string]bool

	// Drag-reorder state. While grabbedID is set, j/k slide the grabbed
	// todo within its sibling group; nothing persists until drop.
	grabbedID    string
	grabParentID string
	grabFrom     int
	grabTo       int

	mode        inputMode
	input       textinput.Model
	addKind     domain.TodoKind
	addParentID string
	renameID    string
	infoID      string

	wsPickerIndex int
	confirmTodo   domain.Todo

	pendingFocusID string

	detail detailRenderer

	// writeClipboard is swapped out in tests.
	writeClipboard func(string) error
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	workspaces []domain.Workspace
	active     domain.Workspace
	roots      []*app.TreeNode
	archived   []domain.Todo
	err        error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err     error
	status  string
	reload  bool
	focusID string
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 200
	m := Model{
		svc:            svc,
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		treeFields:     DefaultTreeFieldConfig(),
		collapsed:      map[string]bool{},
		input:          input,
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	if _, err := m.svc.EnsureDefaultWorkspace(ctx); err != nil {
		return loadedMsg{err: err}
	}
	workspaces, err := m.svc.ListWorkspaces(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	active, err := m.svc.ActiveWorkspace(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	roots, err := m.svc.ComposeTree(ctx, active.ID)
	if err != nil {
		return loadedMsg{err: err}
	}
	archived, err := m.svc.ArchivedTodos(ctx, active.ID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{
		workspaces: workspaces,
		active:     active,
		roots:      roots,
		archived:   archived,
	}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.workspaces = msg.workspaces
		m.activeWorkspace = msg.active
		m.roots = msg.roots
		m.archived = msg.archived
		m.clearGrab()
		if m.pendingFocusID != "" {
			m.focusByID(m.pendingFocusID)
			m.pendingFocusID = ""
		}
		m.clampCursor()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusID != "" {
			m.pendingFocusID = msg.focusID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		if m.grabbedID != "" {
			return m.handleGrabModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.toggleArchived):
		m.showArchived = !m.showArchived
		m.cursor = 0
		if m.showArchived {
			m.status = fmt.Sprintf("archived (%d)", len(m.archived))
		} else {
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.workspaces):
		m.mode = modeWorkspacePicker
		m.wsPickerIndex = m.activeWorkspaceIndex()
		return m, nil
	}

	if m.showArchived {
		return m.handleArchivedKey(msg)
	}

	rows := m.visibleRows()
	switch {
	case key.Matches(msg, m.keys.moveDown):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.collapse):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		if len(node.Children) > 0 && !m.collapsed[node.ID] {
			m.collapsed[node.ID] = true
			return m, nil
		}
		// Already collapsed or a leaf: jump to the parent row.
		if node.ParentID != "" {
			m.focusByID(node.ParentID)
		}
		return m, nil
	case key.Matches(msg, m.keys.expand):
		if node, ok := m.cursorNode(rows); ok {
			delete(m.collapsed, node.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggleDone):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		return m, m.toggleTodoCmd(node.ID)
	case key.Matches(msg, m.keys.grab):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		siblings := m.siblingGroup(node.ParentID)
		if len(siblings) < 2 {
			m.status = "nothing to reorder"
			return m, nil
		}
		m.grabbedID = node.ID
		m.grabParentID = node.ParentID
		m.grabFrom = node.Order
		m.grabTo = node.Order
		m.status = fmt.Sprintf("grabbed %q (enter drops, esc cancels)", truncate(node.Title, 28))
		return m, nil
	case key.Matches(msg, m.keys.addChild):
		node, ok := m.cursorNode(rows)
		if !ok {
			m.status = "no todo selected"
			return m, nil
		}
		kind, ok := node.ChildKind()
		if !ok {
			m.status = "tasks cannot have children"
			return m, nil
		}
		return m.startAddTodo(kind, node.ID)
	case key.Matches(msg, m.keys.addEpic):
		return m.startAddTodo(domain.KindEpic, "")
	case key.Matches(msg, m.keys.addQuickTask):
		return m.startAddTodo(domain.KindTask, "")
	case key.Matches(msg, m.keys.rename):
		node, ok := m.cursorNode(rows)
		if !ok {
			m.status = "no todo selected"
			return m, nil
		}
		m.mode = modeRenameTodo
		m.renameID = node.ID
		m.input.Placeholder = ""
		m.input.SetValue(node.Title)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.todoInfo):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		m.mode = modeTodoInfo
		m.infoID = node.ID
		return m, nil
	case key.Matches(msg, m.keys.archiveTodo):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		return m, m.archiveTodoCmd(node.ID, node.Title)
	case key.Matches(msg, m.keys.deleteTodo):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirmTodo = node.Todo
		return m, nil
	case key.Matches(msg, m.keys.yank):
		node, ok := m.cursorNode(rows)
		if !ok {
			return m, nil
		}
		if err := m.writeClipboard(node.Title); err != nil {
			m.status = "yank failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("yanked %q", truncate(node.Title, 40))
		return m, nil
	default:
		return m, nil
	}
}

// handleGrabModeKey slides or drops the grabbed todo.
func (m Model) handleGrabModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	group := m.siblingGroup(m.grabParentID)
	switch {
	case key.Matches(msg, m.keys.moveDown):
		if m.grabTo < len(group)-1 {
			m.grabTo++
			m.followGrabbed()
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.grabTo > 0 {
			m.grabTo--
			m.followGrabbed()
		}
		return m, nil
	case key.Matches(msg, m.keys.drop):
		from, to := m.grabFrom, m.grabTo
		parentID := m.grabParentID
		grabbedID := m.grabbedID
		m.clearGrab()
		if from == to {
			m.status = "ready"
			return m, nil
		}
		return m, m.reorderCmd(parentID, from, to, grabbedID)
	case key.Matches(msg, m.keys.cancel):
		m.clearGrab()
		m.status = "reorder canceled"
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	default:
		return m, nil
	}
}

// handleArchivedKey handles keys while the archived list is shown.
func (m Model) handleArchivedKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveDown):
		if m.cursor < len(m.archived)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.restoreTodo):
		todo, ok := m.cursorArchived()
		if !ok {
			return m, nil
		}
		return m, m.restoreTodoCmd(todo.ID, todo.Title)
	case key.Matches(msg, m.keys.deleteTodo):
		todo, ok := m.cursorArchived()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.confirmTodo = todo
		return m, nil
	case key.Matches(msg, m.keys.yank):
		todo, ok := m.cursorArchived()
		if !ok {
			return m, nil
		}
		if err := m.writeClipboard(todo.Title); err != nil {
			m.status = "yank failed: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("yanked %q", truncate(todo.Title, 40))
		return m, nil
	default:
		return m, nil
	}
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAddTodo, modeRenameTodo, modeAddWorkspace:
		switch msg.String() {
		case "enter":
			return m.submitInput()
		case "esc":
			m.mode = modeNone
			m.input.Blur()
			m.input.SetValue("")
			m.status = "canceled"
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modeWorkspacePicker:
		switch {
		case key.Matches(msg, m.keys.moveDown):
			if m.wsPickerIndex < len(m.workspaces)-1 {
				m.wsPickerIndex++
			}
			return m, nil
		case key.Matches(msg, m.keys.moveUp):
			if m.wsPickerIndex > 0 {
				m.wsPickerIndex--
			}
			return m, nil
		case msg.String() == "enter":
			if m.wsPickerIndex >= len(m.workspaces) {
				return m, nil
			}
			ws := m.workspaces[m.wsPickerIndex]
			m.mode = modeNone
			m.cursor = 0
			return m, m.switchWorkspaceCmd(ws)
		case msg.String() == "n":
			m.mode = modeAddWorkspace
			m.input.Placeholder = "workspace name"
			m.input.SetValue("")
			return m, m.input.Focus()
		case msg.String() == "d":
			if m.wsPickerIndex >= len(m.workspaces) {
				return m, nil
			}
			ws := m.workspaces[m.wsPickerIndex]
			m.mode = modeNone
			return m, m.deleteWorkspaceCmd(ws)
		case msg.String() == "esc", msg.String() == "q":
			m.mode = modeNone
			return m, nil
		default:
			return m, nil
		}

	case modeTodoInfo:
		switch msg.String() {
		case "esc", "q", "i", "enter":
			m.mode = modeNone
			m.infoID = ""
			return m, nil
		case "y":
			if node, ok := m.nodeByID(m.infoID); ok {
				if err := m.writeClipboard(node.Title); err != nil {
					m.status = "yank failed: " + err.Error()
				} else {
					m.status = fmt.Sprintf("yanked %q", truncate(node.Title, 40))
				}
			}
			return m, nil
		default:
			return m, nil
		}

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			todo := m.confirmTodo
			m.mode = modeNone
			m.confirmTodo = domain.Todo{}
			return m, m.deleteTodoCmd(todo.ID, todo.Title)
		case "n", "esc", "q":
			m.mode = modeNone
			m.confirmTodo = domain.Todo{}
			m.status = "delete canceled"
			return m, nil
		default:
			return m, nil
		}

	default:
		m.mode = modeNone
		return m, nil
	}
}

// startAddTodo opens the title input for one new todo.
func (m Model) startAddTodo(kind domain.TodoKind, parentID string) (tea.Model, tea.Cmd) {
	m.mode = modeAddTodo
	m.addKind = kind
	m.addParentID = parentID
	m.input.Placeholder = fmt.Sprintf("new %s title", kind)
	m.input.SetValue("")
	return m, m.input.Focus()
}

// submitInput commits the pending text input for the active mode.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	mode := m.mode
	m.mode = modeNone
	m.input.Blur()
	m.input.SetValue("")
	if value == "" {
		m.status = "canceled (empty input)"
		return m, nil
	}
	switch mode {
	case modeAddTodo:
		return m, m.createTodoCmd(value, m.addKind, m.addParentID)
	case modeRenameTodo:
		return m, m.renameTodoCmd(m.renameID, value)
	case modeAddWorkspace:
		return m, m.createWorkspaceCmd(value)
	default:
		return m, nil
	}
}

// createTodoCmd creates one todo and focuses it after reload.
func (m Model) createTodoCmd(title string, kind domain.TodoKind, parentID string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		todo, err := m.svc.CreateTodo(context.Background(), app.CreateTodoInput{
			WorkspaceID: workspaceID,
			Title:       title,
			Kind:        kind,
			ParentID:    parentID,
		})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{
			reload:  true,
			status:  fmt.Sprintf("created %s %q", kind, truncate(todo.Title, 28)),
			focusID: todo.ID,
		}
	}
}

// toggleTodoCmd flips one todo's completion.
func (m Model) toggleTodoCmd(id string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		if err := m.svc.ToggleTodo(context.Background(), workspaceID, id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, focusID: id}
	}
}

// renameTodoCmd renames one todo.
func (m Model) renameTodoCmd(id, title string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		if err := m.svc.RenameTodo(context.Background(), workspaceID, id, title); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: "renamed", focusID: id}
	}
}

// archiveTodoCmd archives one todo.
func (m Model) archiveTodoCmd(id, title string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		if err := m.svc.ArchiveTodo(context.Background(), workspaceID, id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: fmt.Sprintf("archived %q", truncate(title, 28))}
	}
}

// restoreTodoCmd restores one archived todo to the end of its group.
func (m Model) restoreTodoCmd(id, title string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		if err := m.svc.RestoreTodo(context.Background(), workspaceID, id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: fmt.Sprintf("restored %q", truncate(title, 28))}
	}
}

// deleteTodoCmd deletes one todo and its subtree.
func (m Model) deleteTodoCmd(id, title string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		if err := m.svc.DeleteTodo(context.Background(), workspaceID, id); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: fmt.Sprintf("deleted %q", truncate(title, 28))}
	}
}

// reorderCmd persists one drop as a single splice.
func (m Model) reorderCmd(parentID string, from, to int, focusID string) tea.Cmd {
	workspaceID := m.activeWorkspace.ID
	return func() tea.Msg {
		if err := m.svc.ReorderTodos(context.Background(), workspaceID, parentID, from, to); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: "reordered", focusID: focusID}
	}
}

// switchWorkspaceCmd activates one workspace.
func (m Model) switchWorkspaceCmd(ws domain.Workspace) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.SetActiveWorkspace(context.Background(), ws.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: fmt.Sprintf("workspace %q", ws.Name)}
	}
}

// createWorkspaceCmd creates and activates one workspace.
func (m Model) createWorkspaceCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ws, err := m.svc.CreateWorkspace(context.Background(), name)
		if err != nil {
			return actionMsg{err: err}
		}
		if err := m.svc.SetActiveWorkspace(context.Background(), ws.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: fmt.Sprintf("workspace %q created", ws.Name)}
	}
}

// deleteWorkspaceCmd deletes one workspace; the default is refused.
func (m Model) deleteWorkspaceCmd(ws domain.Workspace) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteWorkspace(context.Background(), ws.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{reload: true, status: fmt.Sprintf("workspace %q deleted", ws.Name)}
	}
}

// visibleRows flattens the forest honoring collapsed nodes and the
// in-flight grab preview.
func (m Model) visibleRows() []app.FlatNode {
	out := []app.FlatNode{}
	var walk func(parentID string, nodes []*app.TreeNode, depth int)
	walk = func(parentID string, nodes []*app.TreeNode, depth int) {
		if m.grabbedID != "" && parentID == m.grabParentID {
			nodes = spliceNodes(nodes, m.grabbedID, m.grabTo)
		}
		for _, node := range nodes {
			out = append(out, app.FlatNode{TreeNode: node, Depth: depth})
			if !m.collapsed[node.ID] {
				walk(node.ID, node.Children, depth+1)
			}
		}
	}
	walk("", m.roots, 0)
	return out
}

// spliceNodes returns nodes with the named node moved to position to.
func spliceNodes(nodes []*app.TreeNode, id string, to int) []*app.TreeNode {
	idx := -1
	for i, node := range nodes {
		if node.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nodes
	}
	out := make([]*app.TreeNode, 0, len(nodes))
	out = append(out, nodes[:idx]...)
	out = append(out, nodes[idx+1:]...)
	to = clamp(to, 0, len(out))
	out = append(out[:to], append([]*app.TreeNode{nodes[idx]}, out[to:]...)...)
	return out
}

// siblingGroup returns the visible sibling nodes under one parent.
func (m Model) siblingGroup(parentID string) []*app.TreeNode {
	if parentID == "" {
		return m.roots
	}
	if node, ok := m.nodeByID(parentID); ok {
		return node.Children
	}
	return nil
}

// nodeByID finds one node anywhere in the forest.
func (m Model) nodeByID(id string) (*app.TreeNode, bool) {
	var find func(nodes []*app.TreeNode) (*app.TreeNode, bool)
	find = func(nodes []*app.TreeNode) (*app.TreeNode, bool) {
		for _, node := range nodes {
			if node.ID == id {
				return node, true
			}
			if found, ok := find(node.Children); ok {
				return found, true
			}
		}
		return nil, false
	}
	return find(m.roots)
}

// cursorNode returns the row under the cursor.
func (m Model) cursorNode(rows []app.FlatNode) (app.FlatNode, bool) {
	if m.cursor < 0 || m.cursor >= len(rows) {
		return app.FlatNode{}, false
	}
	return rows[m.cursor], true
}

// cursorArchived returns the archived todo under the cursor.
func (m Model) cursorArchived() (domain.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.archived) {
		return domain.Todo{}, false
	}
	return m.archived[m.cursor], true
}

// focusByID moves the cursor to the row holding id, expanding ancestors.
func (m *Model) focusByID(id string) {
	node, ok := m.nodeByID(id)
	if !ok {
		return
	}
	for parentID := node.ParentID; parentID != ""; {
		delete(m.collapsed, parentID)
		parent, ok := m.nodeByID(parentID)
		if !ok {
			break
		}
		parentID = parent.ParentID
	}
	for i, row := range m.visibleRows() {
		if row.ID == id {
			m.cursor = i
			return
		}
	}
}

// followGrabbed keeps the cursor on the grabbed row while sliding.
func (m *Model) followGrabbed() {
	for i, row := range m.visibleRows() {
		if row.ID == m.grabbedID {
			m.cursor = i
			return
		}
	}
}

// activeWorkspaceIndex locates the active workspace in the picker list.
func (m Model) activeWorkspaceIndex() int {
	for i, ws := range m.workspaces {
		if ws.ID == m.activeWorkspace.ID {
			return i
		}
	}
	return 0
}

// clearGrab drops any in-flight reorder without persisting.
func (m *Model) clearGrab() {
	m.grabbedID = ""
	m.grabParentID = ""
	m.grabFrom = 0
	m.grabTo = 0
}

// clampCursor keeps the cursor inside the visible list.
func (m *Model) clampCursor() {
	limit := len(m.visibleRows()) - 1
	if m.showArchived {
		limit = len(m.archived) - 1
	}
	m.cursor = clamp(m.cursor, 0, max(limit, 0))
}

// clamp clamps the requested operation.
func clamp(v, low, high int) int {
	if high < low {
		return low
	}
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// truncate shortens s to at most limit runes, ending in an ellipsis.
// It counts runes, not bytes, so multi-byte titles stay intact.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return string(runes[:1])
	}
	return string(runes[:limit-1]) + "…"
}
