package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// memRepo is an in-memory store backing handler tests.
type memRepo struct {
	workspaces []domain.Workspace
	active     string
	todos      map[string][]domain.Todo
	quizzes    []domain.Quiz
}

func newMemRepo() *memRepo {
	return &memRepo{todos: map[string][]domain.Todo{}}
}

func (m *memRepo) LoadWorkspaces(context.Context) ([]domain.Workspace, error) {
	return append([]domain.Workspace(nil), m.workspaces...), nil
}

func (m *memRepo) SaveWorkspaces(_ context.Context, workspaces []domain.Workspace) error {
	m.workspaces = append([]domain.Workspace(nil), workspaces...)
	return nil
}

func (m *memRepo) LoadActiveWorkspace(context.Context) (string, error) { return m.active, nil }

func (m *memRepo) SaveActiveWorkspace(_ context.Context, id string) error {
	m.active = id
	return nil
}

func (m *memRepo) LoadTodos(_ context.Context, workspaceID string) ([]domain.Todo, error) {
	return append([]domain.Todo(nil), m.todos[workspaceID]...), nil
}

func (m *memRepo) SaveTodos(_ context.Context, workspaceID string, todos []domain.Todo) error {
	m.todos[workspaceID] = append([]domain.Todo(nil), todos...)
	return nil
}

func (m *memRepo) DeleteTodos(_ context.Context, workspaceID string) error {
	delete(m.todos, workspaceID)
	return nil
}

func (m *memRepo) LoadQuizzes(context.Context) ([]domain.Quiz, error) {
	return append([]domain.Quiz(nil), m.quizzes...), nil
}

func (m *memRepo) SaveQuizzes(_ context.Context, quizzes []domain.Quiz) error {
	m.quizzes = append([]domain.Quiz(nil), quizzes...)
	return nil
}

// newTestHandler builds one handler over a deterministic service with the
// default workspace already present.
func newTestHandler(t *testing.T) (*Handler, *app.Service) {
	t.Helper()
	repo := newMemRepo()
	seq := 0
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	idGen := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	clock := func() time.Time {
		seq++
		return base.Add(time.Duration(seq) * time.Second)
	}
	svc := app.NewService(repo, idGen, clock, app.ServiceConfig{})
	if _, err := svc.EnsureDefaultWorkspace(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultWorkspace() error = %v", err)
	}
	return NewHandler(svc), svc
}

func doJSON(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelopeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return env.Error.Code
}

func TestListWorkspacesIncludesDefault(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/workspaces", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		Workspaces []domain.Workspace `json:"workspaces"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Workspaces) != 1 || got.Workspaces[0].ID != domain.DefaultWorkspaceID {
		t.Fatalf("unexpected workspaces %+v", got.Workspaces)
	}
}

func TestCreateWorkspace(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/workspaces", `{"name":"Work"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var ws domain.Workspace
	if err := json.NewDecoder(rec.Body).Decode(&ws); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ws.Name != "Work" || ws.ID == "" {
		t.Fatalf("unexpected workspace %+v", ws)
	}
}

func TestCreateWorkspaceRejectsBlankName(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/workspaces", `{"name":"   "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if code := decodeEnvelopeCode(t, rec); code != "validation_failed" {
		t.Fatalf("code = %q, want validation_failed", code)
	}
}

func TestDeleteDefaultWorkspaceConflicts(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodDelete, "/workspaces/"+domain.DefaultWorkspaceID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if code := decodeEnvelopeCode(t, rec); code != "default_workspace" {
		t.Fatalf("code = %q, want default_workspace", code)
	}
}

func TestSetActiveWorkspaceUnknownIs404(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPut, "/workspaces/active", `{"id":"ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestActiveWorkspaceFallsBackToDefault(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/workspaces/active", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var ws domain.Workspace
	if err := json.NewDecoder(rec.Body).Decode(&ws); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ws.ID != domain.DefaultWorkspaceID {
		t.Fatalf("active = %q, want %q", ws.ID, domain.DefaultWorkspaceID)
	}
}

func TestCreateTodoAndTree(t *testing.T) {
	h, _ := newTestHandler(t)
	wsPath := "/workspaces/" + domain.DefaultWorkspaceID

	rec := doJSON(t, h, http.MethodPost, wsPath+"/todos", `{"title":"Release","type":"epic"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var epic domain.Todo
	if err := json.NewDecoder(rec.Body).Decode(&epic); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	body := fmt.Sprintf(`{"title":"Ship it","type":"story","parentId":%q}`, epic.ID)
	rec = doJSON(t, h, http.MethodPost, wsPath+"/todos", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, wsPath+"/todos/tree", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var tree struct {
		Tree []struct {
			domain.Todo
			Children []struct{ domain.Todo } `json:"children"`
			Done     int                     `json:"done"`
			Total    int                     `json:"total"`
		} `json:"tree"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&tree); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(tree.Tree) != 1 || len(tree.Tree[0].Children) != 1 {
		t.Fatalf("unexpected tree %+v", tree.Tree)
	}
	if tree.Tree[0].Total != 1 || tree.Tree[0].Done != 0 {
		t.Fatalf("rollup = %d/%d, want 0/1", tree.Tree[0].Done, tree.Tree[0].Total)
	}
}

func TestCreateTodoStoryWithoutParentRejected(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/workspaces/default/todos", `{"title":"orphan","type":"story"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestPatchTodoTitleAndCompleted(t *testing.T) {
	h, svc := newTestHandler(t)
	ctx := context.Background()

	todo, err := svc.CreateTodo(ctx, app.CreateTodoInput{WorkspaceID: "default", Title: "draft", Kind: domain.KindTask})
	if err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}

	rec := doJSON(t, h, http.MethodPatch, "/workspaces/default/todos/"+todo.ID, `{"title":"final","completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got domain.Todo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Title != "final" || !got.Completed {
		t.Fatalf("unexpected todo %+v", got)
	}
}

func TestReorderTodosReturnsNewOrder(t *testing.T) {
	h, svc := newTestHandler(t)
	ctx := context.Background()
	titles := []string{"a", "b", "c"}
	for _, title := range titles {
		if _, err := svc.CreateTodo(ctx, app.CreateTodoInput{WorkspaceID: "default", Title: title, Kind: domain.KindTask}); err != nil {
			t.Fatalf("CreateTodo(%s) error = %v", title, err)
		}
	}

	rec := doJSON(t, h, http.MethodPost, "/workspaces/default/todos/reorder", `{"parentId":"","fromIndex":2,"toIndex":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var got struct {
		Todos []domain.Todo `json:"todos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Todos) != 3 || got.Todos[0].Title != "c" || got.Todos[1].Title != "a" {
		t.Fatalf("unexpected order %+v", got.Todos)
	}
}

func TestReorderTodosOutOfRangeIs422(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, err := svc.CreateTodo(context.Background(), app.CreateTodoInput{WorkspaceID: "default", Title: "only", Kind: domain.KindTask}); err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}

	rec := doJSON(t, h, http.MethodPost, "/workspaces/default/todos/reorder", `{"parentId":"","fromIndex":0,"toIndex":5}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestArchiveAndRestoreTodo(t *testing.T) {
	h, svc := newTestHandler(t)
	todo, err := svc.CreateTodo(context.Background(), app.CreateTodoInput{WorkspaceID: "default", Title: "park me", Kind: domain.KindTask})
	if err != nil {
		t.Fatalf("CreateTodo() error = %v", err)
	}

	rec := doJSON(t, h, http.MethodPost, "/workspaces/default/todos/"+todo.ID+"/archive", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("archive status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, h, http.MethodGet, "/workspaces/default/todos/archived", "")
	var archived struct {
		Todos []domain.Todo `json:"todos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&archived); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(archived.Todos) != 1 || archived.Todos[0].ID != todo.ID {
		t.Fatalf("unexpected archived %+v", archived.Todos)
	}

	rec = doJSON(t, h, http.MethodPost, "/workspaces/default/todos/"+todo.ID+"/restore", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("restore status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestBadJSONBodyIs400(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/workspaces", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := decodeEnvelopeCode(t, rec); code != "invalid_request" {
		t.Fatalf("code = %q, want invalid_request", code)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodDelete, "/workspaces", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("Allow = %q, want POST included", allow)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/nonsense", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestQuizImportExportRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t)
	doc := `{
		"title": "Go basics",
		"multipleChoice": [
			{"question": "zero value of a map?", "options": ["nil", "empty map"], "correctAnswer": 0}
		]
	}`

	rec := doJSON(t, h, http.MethodPost, "/quizzes/import", doc)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var quiz domain.Quiz
	if err := json.NewDecoder(rec.Body).Decode(&quiz); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	rec = doJSON(t, h, http.MethodGet, "/quizzes/"+quiz.ID+"/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var exported app.QuizDocument
	if err := json.NewDecoder(rec.Body).Decode(&exported); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if exported.Title != "Go basics" || len(exported.MultipleChoice) != 1 {
		t.Fatalf("unexpected export %+v", exported)
	}
}

func TestQuizImportInvalidDocumentIs422(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/quizzes/import", `{"multipleChoice":[]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestExportUnknownQuizIs404(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/quizzes/ghost/export", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
