package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

func TestExportSnapshot(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, "Work")
	if err != nil {
		t.Fatalf("CreateWorkspace() error = %v", err)
	}
	if _, err := svc.CreateTodo(ctx, CreateTodoInput{WorkspaceID: ws.ID, Title: "a", Kind: domain.KindTask}); err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}
	if err := svc.SetActiveWorkspace(ctx, ws.ID); err != nil {
		t.Fatalf("SetActiveWorkspace() error = %v", err)
	}
	if _, err := svc.CreateQuiz(ctx, "Quiz"); err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}

	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snap.Version != SnapshotVersion {
		t.Fatalf("unexpected version %q", snap.Version)
	}
	if snap.ActiveWorkspace != ws.ID {
		t.Fatalf("unexpected active %q", snap.ActiveWorkspace)
	}
	if len(snap.Workspaces) != 2 || snap.Workspaces[0].ID != domain.DefaultWorkspaceID {
		t.Fatalf("expected default first, got %+v", snap.Workspaces)
	}
	if len(snap.Workspaces[1].Todos) != 1 {
		t.Fatalf("expected exported todos, got %+v", snap.Workspaces[1].Todos)
	}
	if len(snap.Quizzes) != 1 {
		t.Fatalf("expected exported quizzes, got %d", len(snap.Quizzes))
	}
}

func TestImportSnapshotRoundTrip(t *testing.T) {
	srcRepo := newFakeRepo()
	src := newTestService(srcRepo)
	ctx := context.Background()

	ws, _ := src.CreateWorkspace(ctx, "Work")
	if _, err := src.CreateTodo(ctx, CreateTodoInput{WorkspaceID: ws.ID, Title: "a", Kind: domain.KindTask}); err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}
	if err := src.SetActiveWorkspace(ctx, ws.ID); err != nil {
		t.Fatalf("SetActiveWorkspace() error = %v", err)
	}
	snap, err := src.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}

	dstRepo := newFakeRepo()
	dst := newTestService(dstRepo)
	if err := dst.ImportSnapshot(ctx, snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	workspaces, err := dst.ListWorkspaces(ctx)
	if err != nil {
		t.Fatalf("ListWorkspaces() error = %v", err)
	}
	if len(workspaces) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(workspaces))
	}
	todos, err := dst.ListTodos(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListTodos() error = %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "a" {
		t.Fatalf("unexpected imported todos %+v", todos)
	}
	active, err := dst.ActiveWorkspace(ctx)
	if err != nil {
		t.Fatalf("ActiveWorkspace() error = %v", err)
	}
	if active.ID != ws.ID {
		t.Fatalf("expected imported active %q, got %q", ws.ID, active.ID)
	}
}

func TestSnapshotValidate(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	valid := func() Snapshot {
		return Snapshot{
			Version: SnapshotVersion,
			Workspaces: []SnapshotWorkspace{{
				ID:        "default",
				Name:      "Personal",
				CreatedAt: now,
				Todos: []domain.Todo{
					{ID: "t1", Title: "a", Kind: domain.KindTask, CreatedAt: now},
				},
			}},
		}
	}

	if err := (func() error { s := valid(); return s.Validate() })(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Snapshot)
		want   string
	}{
		{"bad version", func(s *Snapshot) { s.Version = "v0" }, "unsupported snapshot version"},
		{"missing workspace id", func(s *Snapshot) { s.Workspaces[0].ID = " " }, "id is required"},
		{"duplicate workspace", func(s *Snapshot) { s.Workspaces = append(s.Workspaces, s.Workspaces[0]) }, "duplicate workspace id"},
		{"bad kind", func(s *Snapshot) { s.Workspaces[0].Todos[0].Kind = "bug" }, "epic|story|task"},
		{"self parent", func(s *Snapshot) { s.Workspaces[0].Todos[0].ParentID = "t1" }, "cannot reference itself"},
		{"unknown active", func(s *Snapshot) { s.ActiveWorkspace = "ghost" }, "unknown workspace"},
		{"negative order", func(s *Snapshot) { s.Workspaces[0].Todos[0].Order = -1 }, "order must be >= 0"},
	}
	for _, tc := range cases {
		snap := valid()
		tc.mutate(&snap)
		err := snap.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}
