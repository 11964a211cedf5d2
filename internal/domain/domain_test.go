package domain

import (
	"testing"
	"time"
)

func TestNewTodoTrimsAndDefaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	todo, err := NewTodo(TodoInput{
		ID:    "t1",
		Title: "  Ship the release  ",
		Kind:  KindEpic,
	}, now)
	if err != nil {
		t.Fatalf("NewTodo() error = %v", err)
	}
	if todo.Title != "Ship the release" {
		t.Fatalf("unexpected title %q", todo.Title)
	}
	if todo.Completed || todo.Archived {
		t.Fatal("expected fresh todo to be open and unarchived")
	}
	if !todo.CreatedAt.Equal(now) {
		t.Fatalf("unexpected createdAt %v", todo.CreatedAt)
	}
}

func TestNewTodoValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewTodo(TodoInput{ID: "", Title: "x", Kind: KindTask}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewTodo(TodoInput{ID: "t1", Title: "   ", Kind: KindTask}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := NewTodo(TodoInput{ID: "t1", Title: "x", Kind: TodoKind("bug")}, now); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if _, err := NewTodo(TodoInput{ID: "t1", Title: "x", Kind: KindTask, Order: -1}, now); err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestNewTodoHierarchyRules(t *testing.T) {
	now := time.Now()
	if _, err := NewTodo(TodoInput{ID: "e1", Title: "epic", Kind: KindEpic, ParentID: "x"}, now); err != ErrInvalidParent {
		t.Fatalf("expected ErrInvalidParent for parented epic, got %v", err)
	}
	if _, err := NewTodo(TodoInput{ID: "s1", Title: "story", Kind: KindStory}, now); err != ErrInvalidParent {
		t.Fatalf("expected ErrInvalidParent for rootless story, got %v", err)
	}
	// A parentless task is a quick task.
	if _, err := NewTodo(TodoInput{ID: "t1", Title: "task", Kind: KindTask}, now); err != nil {
		t.Fatalf("NewTodo() quick task error = %v", err)
	}
}

func TestTodoChildKind(t *testing.T) {
	epic := Todo{Kind: KindEpic}
	if !epic.AcceptsChild(KindStory) || epic.AcceptsChild(KindTask) {
		t.Fatal("epic must accept stories only")
	}
	story := Todo{Kind: KindStory}
	if !story.AcceptsChild(KindTask) || story.AcceptsChild(KindStory) {
		t.Fatal("story must accept tasks only")
	}
	task := Todo{Kind: KindTask}
	if _, ok := task.ChildKind(); ok {
		t.Fatal("task must be a leaf")
	}
}

func TestTodoMutations(t *testing.T) {
	now := time.Now()
	todo, err := NewTodo(TodoInput{ID: "t1", Title: "a", Kind: KindTask}, now)
	if err != nil {
		t.Fatalf("NewTodo() error = %v", err)
	}
	todo.Toggle()
	if !todo.Completed {
		t.Fatal("expected completed after toggle")
	}
	if err := todo.Rename("  b "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if todo.Title != "b" {
		t.Fatalf("unexpected title %q", todo.Title)
	}
	todo.Archive()
	if !todo.Archived {
		t.Fatal("expected archived")
	}
	if err := todo.Restore(4); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if todo.Archived || todo.Order != 4 {
		t.Fatalf("unexpected state after restore: archived=%v order=%d", todo.Archived, todo.Order)
	}
	if err := todo.MoveTo("s1", 0); err != nil {
		t.Fatalf("MoveTo() error = %v", err)
	}
	if todo.ParentID != "s1" || todo.Order != 0 {
		t.Fatalf("unexpected state after move: parent=%q order=%d", todo.ParentID, todo.Order)
	}
}

func TestMoveToRootlessStoryRejected(t *testing.T) {
	story := Todo{ID: "s1", Kind: KindStory, ParentID: "e1"}
	if err := story.MoveTo("", 0); err != ErrInvalidParent {
		t.Fatalf("expected ErrInvalidParent, got %v", err)
	}
}

func TestParseTodoKind(t *testing.T) {
	kind, err := ParseTodoKind("  Story ")
	if err != nil {
		t.Fatalf("ParseTodoKind() error = %v", err)
	}
	if kind != KindStory {
		t.Fatalf("unexpected kind %q", kind)
	}
	if _, err := ParseTodoKind("chore"); err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestNewWorkspaceValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewWorkspace("", "ok", now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewWorkspace("w1", "   ", now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	ws, err := NewWorkspace("w1", "  Work ", now)
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}
	if ws.Name != "Work" {
		t.Fatalf("unexpected name %q", ws.Name)
	}
}

func TestDefaultWorkspace(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ws := DefaultWorkspace(now)
	if ws.ID != DefaultWorkspaceID || ws.Name != DefaultWorkspaceName {
		t.Fatalf("unexpected default workspace %+v", ws)
	}
	if !ws.IsDefault() {
		t.Fatal("expected IsDefault")
	}
}

func TestNewQuizAndQuestions(t *testing.T) {
	now := time.Now()
	quiz, err := NewQuiz("q1", " Networking ", now)
	if err != nil {
		t.Fatalf("NewQuiz() error = %v", err)
	}
	if quiz.Title != "Networking" {
		t.Fatalf("unexpected title %q", quiz.Title)
	}
	if quiz.MultipleChoice == nil || quiz.ShortAnswer == nil || quiz.LongAnswer == nil {
		t.Fatal("question groups must be non-nil")
	}

	mc, err := NewMCQuestion("m1", "Which layer?", []string{"L4", "L7"}, 1, 0)
	if err != nil {
		t.Fatalf("NewMCQuestion() error = %v", err)
	}
	if mc.Answer != 1 {
		t.Fatalf("unexpected answer index %d", mc.Answer)
	}
	if _, err := NewMCQuestion("m2", "x", []string{"only"}, 0, 0); err != ErrInvalidChoices {
		t.Fatalf("expected ErrInvalidChoices, got %v", err)
	}
	if _, err := NewMCQuestion("m3", "x", []string{"a", "b"}, 2, 0); err != ErrInvalidAnswer {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := NewSAQuestion("s1", "x", "   ", 0); err != ErrInvalidAnswer {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	if _, err := NewLAQuestion("l1", "  ", "rubric", 0); err != ErrInvalidPrompt {
		t.Fatalf("expected ErrInvalidPrompt, got %v", err)
	}
}

func TestParseQuestionGroup(t *testing.T) {
	group, err := ParseQuestionGroup(" MultipleChoice ")
	if err != nil {
		t.Fatalf("ParseQuestionGroup() error = %v", err)
	}
	if group != GroupMultipleChoice {
		t.Fatalf("unexpected group %q", group)
	}
	if _, err := ParseQuestionGroup("essay"); err == nil {
		t.Fatal("expected error for unknown group")
	}
}
