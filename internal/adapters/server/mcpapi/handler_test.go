package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// memRepo is an in-memory store backing MCP adapter tests.
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

// newTestService builds one deterministic service with the default
// workspace present.
func newTestService(t *testing.T) *app.Service {
	t.Helper()
	seq := 0
	base := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	idGen := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	clock := func() time.Time {
		seq++
		return base.Add(time.Duration(seq) * time.Second)
	}
	svc := app.NewService(newMemRepo(), idGen, clock, app.ServiceConfig{})
	if _, err := svc.EnsureDefaultWorkspace(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultWorkspace() error = %v", err)
	}
	return svc
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "backlog-test",
				"version": "1.0.0",
			},
		},
	}
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()
	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestNormalizeConfigDefaults(t *testing.T) {
	cfg := normalizeConfig(Config{})
	if cfg.ServerName != "backlog" || cfg.ServerVersion != "dev" || cfg.EndpointPath != "/mcp" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	cfg = normalizeConfig(Config{EndpointPath: "tools/"})
	if cfg.EndpointPath != "/tools" {
		t.Fatalf("endpoint = %q, want /tools", cfg.EndpointPath)
	}
}

func TestToolsListIncludesRegisteredTools(t *testing.T) {
	handler, err := NewHandler(Config{}, newTestService(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	var names []string
	for _, raw := range toolsRaw {
		tool, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := tool["name"].(string); ok {
			names = append(names, name)
		}
	}
	for _, want := range []string{
		"backlog.list_workspaces",
		"backlog.create_todo",
		"backlog.toggle_todo",
		"backlog.move_todo",
		"backlog.reorder_todos",
		"backlog.tree",
		"backlog.capture_state",
		"backlog.grade_quiz",
	} {
		if !slices.Contains(names, want) {
			t.Fatalf("tool %q not registered, got %v", want, names)
		}
	}
}

func TestListWorkspacesTool(t *testing.T) {
	handler, err := NewHandler(Config{}, newTestService(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "backlog.list_workspaces", map[string]any{}))

	structured := toolResultStructured(t, resp.Result)
	if structured["active"] != domain.DefaultWorkspaceID {
		t.Fatalf("active = %v, want %q", structured["active"], domain.DefaultWorkspaceID)
	}
}

func TestCreateTodoTool(t *testing.T) {
	handler, err := NewHandler(Config{}, newTestService(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "backlog.create_todo", map[string]any{
		"workspace_id": domain.DefaultWorkspaceID,
		"title":        "Release",
		"type":         "epic",
	}))

	structured := toolResultStructured(t, resp.Result)
	if structured["title"] != "Release" || structured["type"] != "epic" {
		t.Fatalf("unexpected todo payload %#v", structured)
	}
}

func TestCreateTodoToolRejectsBadKind(t *testing.T) {
	handler, err := NewHandler(Config{}, newTestService(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	server := httptest.NewServer(handler)
	defer server.Close()
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, resp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "backlog.create_todo", map[string]any{
		"workspace_id": domain.DefaultWorkspaceID,
		"title":        "bad",
		"type":         "saga",
	}))

	text := toolResultText(t, resp.Result)
	if !strings.HasPrefix(text, "invalid_request:") {
		t.Fatalf("text = %q, want invalid_request prefix", text)
	}
}
