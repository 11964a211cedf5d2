package tui

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

func TestViewRendersSeededTask(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.CreateTodo(context.Background(), app.CreateTodoInput{
		WorkspaceID: domain.DefaultWorkspaceID,
		Title:       "First task",
		Kind:        domain.KindTask,
	}); err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}
	m := loadReadyModel(t, NewModel(svc))

	if v := m.View(); v.Content == nil || !v.AltScreen {
		t.Fatal("expected alt-screen view with content")
	}
	body := m.renderTree()
	if !strings.Contains(body, "First task") {
		t.Fatalf("tree body missing task: %q", body)
	}
	if !strings.Contains(body, domain.DefaultWorkspaceName) {
		t.Fatalf("tree header missing workspace name: %q", body)
	}
}

func TestViewWorkspacePickerFlow(t *testing.T) {
	svc := newTestService(t)
	side, err := svc.CreateWorkspace(context.Background(), "Side")
	if err != nil {
		t.Fatalf("CreateWorkspace() error = %v", err)
	}
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('w'))
	if m.mode != modeWorkspacePicker {
		t.Fatalf("expected picker mode, got %v", m.mode)
	}
	picker := m.renderWorkspacePicker()
	if !strings.Contains(picker, "workspaces") || !strings.Contains(picker, "Side") {
		t.Fatalf("picker body missing entries: %q", picker)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyDown})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.activeWorkspace.ID != side.ID {
		t.Fatalf("active = %q, want %q", m.activeWorkspace.ID, side.ID)
	}
	if body := m.renderTree(); !strings.Contains(body, "Side") {
		t.Fatalf("tree header missing switched workspace: %q", body)
	}
}
