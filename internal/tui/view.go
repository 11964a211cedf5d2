package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// kindBadges maps todo kinds to short colored labels.
var kindBadges = map[domain.TodoKind]string{
	domain.KindEpic:  "epic",
	domain.KindStory: "story",
	domain.KindTask:  "task",
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var body string
	switch {
	case m.mode == modeTodoInfo:
		body = m.renderTodoInfo()
	case m.mode == modeWorkspacePicker || m.mode == modeAddWorkspace:
		body = m.renderWorkspacePicker()
	case m.showArchived:
		body = m.renderArchivedList()
	default:
		body = m.renderTree()
	}

	v := tea.NewView(body)
	v.AltScreen = true
	return v
}

// renderTree renders the hierarchy view with header and status chrome.
func (m Model) renderTree() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	headerStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	var b strings.Builder
	done, total := forestProgress(m.roots)
	header := titleStyle.Render("backlog") + "  " + headerStyle.Render(m.activeWorkspace.Name)
	if m.treeFields.ShowProgress {
		header += mutedStyle.Render(fmt.Sprintf("  %d/%d done", done, total))
	}
	b.WriteString(header + "\n\n")

	rows := m.visibleRows()
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("empty backlog. N starts an epic, T a quick task.") + "\n")
	}
	for i, row := range rows {
		b.WriteString(m.renderRow(row, i == m.cursor) + "\n")
	}

	b.WriteString("\n" + m.renderStatusLine())
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// renderRow renders one tree row.
func (m Model) renderRow(row app.FlatNode, selected bool) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	grabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	kindStyle := map[domain.TodoKind]lipgloss.Style{
		domain.KindEpic:  lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		domain.KindStory: lipgloss.NewStyle().Foreground(lipgloss.Color("36")),
		domain.KindTask:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}

	indent := strings.Repeat(" ", row.Depth*m.treeFields.IndentWidth)

	marker := "  "
	if len(row.Children) > 0 {
		if m.collapsed[row.ID] {
			marker = "▸ "
		} else {
			marker = "▾ "
		}
	}

	check := "[ ]"
	if row.Completed {
		check = "[x]"
	}

	title := row.Title
	if row.Completed {
		title = doneStyle.Render(title)
	}

	line := indent + marker + check + " " + title
	if m.treeFields.ShowKind {
		line += " " + kindStyle[row.Kind].Render("("+kindBadges[row.Kind]+")")
	}
	if m.treeFields.ShowProgress && len(row.Children) > 0 {
		line += muted.Render(fmt.Sprintf(" %d/%d", row.Done, row.Total))
	}

	prefix := "  "
	if selected {
		prefix = "> "
	}
	if row.ID == m.grabbedID {
		return prefix + grabStyle.Render("⇅ "+line)
	}
	if selected {
		return prefix + lipgloss.NewStyle().Bold(true).Render(line)
	}
	return prefix + line
}

// renderArchivedList renders the archived todos view, newest first.
func (m Model) renderArchivedList() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("archived") + "  " + muted.Render(m.activeWorkspace.Name) + "\n\n")
	if len(m.archived) == 0 {
		b.WriteString(muted.Render("nothing archived. t returns to the tree.") + "\n")
	}
	for i, todo := range m.archived {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s (%s)", prefix, todo.Title, kindBadges[todo.Kind])
		if i == m.cursor {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + muted.Render("u restore • d delete • t back") + "\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// renderWorkspacePicker renders the workspace switcher modal.
func (m Model) renderWorkspacePicker() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("workspaces") + "\n\n")
	for i, ws := range m.workspaces {
		prefix := "  "
		if i == m.wsPickerIndex {
			prefix = "> "
		}
		label := ws.Name
		if ws.ID == m.activeWorkspace.ID {
			label += muted.Render(" (active)")
		}
		if ws.IsDefault() {
			label += muted.Render(" (default)")
		}
		line := prefix + label
		if i == m.wsPickerIndex {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m.mode == modeAddWorkspace {
		b.WriteString("\n" + m.input.View() + "\n")
	} else {
		b.WriteString("\n" + muted.Render("enter switch • n new • d delete • esc close") + "\n")
	}
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// renderTodoInfo renders the detail pane for one todo through glamour.
func (m Model) renderTodoInfo() string {
	node, ok := m.nodeByID(m.infoID)
	if !ok {
		return "todo not found\n\nesc closes"
	}

	rendered := m.detail.render(node, m.width-4)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return rendered + "\n\n" + muted.Render("y yank title • esc close") + "\n" + m.renderStatusLine()
}

// renderStatusLine renders the status bar, including any live input.
func (m Model) renderStatusLine() string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	if m.mode == modeAddTodo || m.mode == modeRenameTodo {
		return m.input.View()
	}
	if m.mode == modeConfirmDelete {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
		return warn.Render(fmt.Sprintf("delete %q and its subtree? y/n", truncate(m.confirmTodo.Title, 40)))
	}
	return statusStyle.Render(m.status)
}

// forestProgress sums leaf completion across all roots.
func forestProgress(roots []*app.TreeNode) (done, total int) {
	for _, root := range roots {
		done += root.Done
		total += root.Total
	}
	return done, total
}
