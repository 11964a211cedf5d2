package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// fakeRepo keeps whole collections in memory and counts saves so tests
// can assert the synchronous-persist contract.
type fakeRepo struct {
	workspaces []domain.Workspace
	active     string
	todos      map[string][]domain.Todo
	quizzes    []domain.Quiz

	todoSaves      map[string]int
	workspaceSaves int
	quizSaves      int
	failSaves      bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		todos:     map[string][]domain.Todo{},
		todoSaves: map[string]int{},
	}
}

var errSaveFailed = errors.New("save failed")

func (r *fakeRepo) LoadWorkspaces(context.Context) ([]domain.Workspace, error) {
	return append([]domain.Workspace(nil), r.workspaces...), nil
}

func (r *fakeRepo) SaveWorkspaces(_ context.Context, workspaces []domain.Workspace) error {
	if r.failSaves {
		return errSaveFailed
	}
	r.workspaceSaves++
	r.workspaces = append([]domain.Workspace(nil), workspaces...)
	return nil
}

func (r *fakeRepo) LoadActiveWorkspace(context.Context) (string, error) {
	return r.active, nil
}

func (r *fakeRepo) SaveActiveWorkspace(_ context.Context, id string) error {
	if r.failSaves {
		return errSaveFailed
	}
	r.active = id
	return nil
}

func (r *fakeRepo) LoadTodos(_ context.Context, workspaceID string) ([]domain.Todo, error) {
	return append([]domain.Todo(nil), r.todos[workspaceID]...), nil
}

func (r *fakeRepo) SaveTodos(_ context.Context, workspaceID string, todos []domain.Todo) error {
	if r.failSaves {
		return errSaveFailed
	}
	r.todoSaves[workspaceID]++
	r.todos[workspaceID] = append([]domain.Todo(nil), todos...)
	return nil
}

func (r *fakeRepo) DeleteTodos(_ context.Context, workspaceID string) error {
	delete(r.todos, workspaceID)
	return nil
}

func (r *fakeRepo) LoadQuizzes(context.Context) ([]domain.Quiz, error) {
	return append([]domain.Quiz(nil), r.quizzes...), nil
}

func (r *fakeRepo) SaveQuizzes(_ context.Context, quizzes []domain.Quiz) error {
	if r.failSaves {
		return errSaveFailed
	}
	r.quizSaves++
	r.quizzes = append([]domain.Quiz(nil), quizzes...)
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	seq := 0
	idGen := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return NewService(repo, idGen, clock, ServiceConfig{})
}

func TestEnsureDefaultWorkspace(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	ws, err := svc.EnsureDefaultWorkspace(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultWorkspace() error = %v", err)
	}
	if ws.ID != domain.DefaultWorkspaceID || ws.Name != domain.DefaultWorkspaceName {
		t.Fatalf("unexpected default workspace %+v", ws)
	}
	saves := repo.workspaceSaves
	if _, err := svc.EnsureDefaultWorkspace(ctx); err != nil {
		t.Fatalf("EnsureDefaultWorkspace() second call error = %v", err)
	}
	if repo.workspaceSaves != saves {
		t.Fatal("second ensure must not write")
	}
}

func TestListWorkspacesDefaultFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.CreateWorkspace(ctx, "Work"); err != nil {
		t.Fatalf("CreateWorkspace() error = %v", err)
	}
	if _, err := svc.CreateWorkspace(ctx, "Side"); err != nil {
		t.Fatalf("CreateWorkspace() error = %v", err)
	}
	workspaces, err := svc.ListWorkspaces(ctx)
	if err != nil {
		t.Fatalf("ListWorkspaces() error = %v", err)
	}
	if len(workspaces) != 3 {
		t.Fatalf("expected 3 workspaces, got %d", len(workspaces))
	}
	if !workspaces[0].IsDefault() {
		t.Fatalf("default must sort first, got %+v", workspaces[0])
	}
	if workspaces[1].Name != "Work" || workspaces[2].Name != "Side" {
		t.Fatalf("expected creation order after default, got %q, %q", workspaces[1].Name, workspaces[2].Name)
	}
}

func TestDeleteWorkspace(t *testing.T) {
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

	if err := svc.DeleteWorkspace(ctx, domain.DefaultWorkspaceID); !errors.Is(err, ErrDefaultWorkspace) {
		t.Fatalf("expected ErrDefaultWorkspace, got %v", err)
	}
	if err := svc.DeleteWorkspace(ctx, ws.ID); err != nil {
		t.Fatalf("DeleteWorkspace() error = %v", err)
	}
	if _, ok := repo.todos[ws.ID]; ok {
		t.Fatal("expected workspace todo collection to be deleted")
	}
	active, err := svc.ActiveWorkspace(ctx)
	if err != nil {
		t.Fatalf("ActiveWorkspace() error = %v", err)
	}
	if !active.IsDefault() {
		t.Fatalf("expected active to fall back to default, got %+v", active)
	}

	// Unknown IDs are a silent no-op.
	saves := repo.workspaceSaves
	if err := svc.DeleteWorkspace(ctx, "missing"); err != nil {
		t.Fatalf("DeleteWorkspace() unknown id error = %v", err)
	}
	if repo.workspaceSaves != saves {
		t.Fatal("unknown delete must not write")
	}
}

func TestActiveWorkspaceFallsBackToDefault(t *testing.T) {
	repo := newFakeRepo()
	repo.active = "ghost"
	svc := newTestService(repo)

	active, err := svc.ActiveWorkspace(context.Background())
	if err != nil {
		t.Fatalf("ActiveWorkspace() error = %v", err)
	}
	if !active.IsDefault() {
		t.Fatalf("expected default fallback, got %+v", active)
	}
}

func TestSetActiveWorkspaceUnknownRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	if err := svc.SetActiveWorkspace(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameWorkspaceUnknownIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	if _, err := svc.EnsureDefaultWorkspace(ctx); err != nil {
		t.Fatalf("EnsureDefaultWorkspace() error = %v", err)
	}
	saves := repo.workspaceSaves
	if _, err := svc.RenameWorkspace(ctx, "missing", "New"); err != nil {
		t.Fatalf("RenameWorkspace() unknown id error = %v", err)
	}
	if repo.workspaceSaves != saves {
		t.Fatal("unknown rename must not write")
	}
	ws, err := svc.RenameWorkspace(ctx, domain.DefaultWorkspaceID, "Mine")
	if err != nil {
		t.Fatalf("RenameWorkspace() error = %v", err)
	}
	if ws.Name != "Mine" {
		t.Fatalf("unexpected name %q", ws.Name)
	}
}
