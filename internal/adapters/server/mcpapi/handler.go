// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing workspace, todo, and quiz tools.
func NewHandler(cfg Config, svc *app.Service) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("application service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerWorkspaceTools(mcpSrv, svc)
	registerTodoTools(mcpSrv, svc)
	registerQuizTools(mcpSrv, svc)
	registerCaptureStateTool(mcpSrv, svc)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "backlog"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerWorkspaceTools registers workspace list/switch tools.
func registerWorkspaceTools(srv *mcpserver.MCPServer, svc *app.Service) {
	srv.AddTool(
		mcp.NewTool(
			"backlog.list_workspaces",
			mcp.WithDescription("List workspaces with the currently active one marked."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaces, err := svc.ListWorkspaces(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			active, err := svc.ActiveWorkspace(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"workspaces": workspaces,
				"active":     active.ID,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_workspaces result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.set_active_workspace",
			mcp.WithDescription("Switch the active workspace."),
			mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaceID, err := req.RequireString("workspace_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.SetActiveWorkspace(ctx, workspaceID); err != nil {
				return toolResultFromError(err), nil
			}
			ws, err := svc.ActiveWorkspace(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(ws)
			if err != nil {
				return nil, fmt.Errorf("encode set_active_workspace result: %w", err)
			}
			return result, nil
		},
	)
}

// registerTodoTools registers create/toggle/move/reorder/tree tools.
func registerTodoTools(srv *mcpserver.MCPServer, svc *app.Service) {
	srv.AddTool(
		mcp.NewTool(
			"backlog.tree",
			mcp.WithDescription("Return the non-archived todo hierarchy for one workspace with completion rollups."),
			mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaceID, err := req.RequireString("workspace_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			roots, err := svc.ComposeTree(ctx, workspaceID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"tree": roots})
			if err != nil {
				return nil, fmt.Errorf("encode tree result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.create_todo",
			mcp.WithDescription("Create one todo. Epics must be roots; stories need an epic parent; tasks may be quick tasks at root."),
			mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Todo title")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Todo type"), mcp.Enum("epic", "story", "task")),
			mcp.WithString("parent_id", mcp.Description("Parent todo id, empty for root")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaceID, err := req.RequireString("workspace_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rawKind, err := req.RequireString("type")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			kind, err := domain.ParseTodoKind(rawKind)
			if err != nil {
				return toolResultFromError(err), nil
			}
			todo, err := svc.CreateTodo(ctx, app.CreateTodoInput{
				WorkspaceID: workspaceID,
				Title:       title,
				Kind:        kind,
				ParentID:    req.GetString("parent_id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(todo)
			if err != nil {
				return nil, fmt.Errorf("encode create_todo result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.toggle_todo",
			mcp.WithDescription("Toggle one todo's completion. Unknown ids are a no-op."),
			mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace identifier")),
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Todo identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaceID, err := req.RequireString("workspace_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			todoID, err := req.RequireString("todo_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.ToggleTodo(ctx, workspaceID, todoID); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"ok": true})
			if err != nil {
				return nil, fmt.Errorf("encode toggle_todo result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.move_todo",
			mcp.WithDescription("Re-parent one todo; it lands at the end of the destination sibling group."),
			mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace identifier")),
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Todo identifier")),
			mcp.WithString("parent_id", mcp.Description("New parent id, empty for root")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaceID, err := req.RequireString("workspace_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			todoID, err := req.RequireString("todo_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.MoveTodo(ctx, workspaceID, todoID, req.GetString("parent_id", "")); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"ok": true})
			if err != nil {
				return nil, fmt.Errorf("encode move_todo result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"backlog.reorder_todos",
			mcp.WithDescription("Move one todo between positions within its sibling group."),
			mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Workspace identifier")),
			mcp.WithString("parent_id", mcp.Description("Parent id scoping the sibling group, empty for root")),
			mcp.WithNumber("from_index", mcp.Required(), mcp.Description("Current zero-based position")),
			mcp.WithNumber("to_index", mcp.Required(), mcp.Description("Target zero-based position")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			workspaceID, err := req.RequireString("workspace_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			fromIndex, err := req.RequireInt("from_index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			toIndex, err := req.RequireInt("to_index")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			parentID := req.GetString("parent_id", "")
			if err := svc.ReorderTodos(ctx, workspaceID, parentID, fromIndex, toIndex); err != nil {
				return toolResultFromError(err), nil
			}
			siblings, err := svc.Children(ctx, workspaceID, parentID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"todos": siblings})
			if err != nil {
				return nil, fmt.Errorf("encode reorder_todos result: %w", err)
			}
			return result, nil
		},
	)
}

// registerCaptureStateTool registers the `backlog.capture_state` snapshot tool.
func registerCaptureStateTool(srv *mcpserver.MCPServer, svc *app.Service) {
	srv.AddTool(
		mcp.NewTool(
			"backlog.capture_state",
			mcp.WithDescription("Return a full snapshot of workspaces, todos, and quizzes."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			snap, err := svc.ExportSnapshot(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(snap)
			if err != nil {
				return nil, fmt.Errorf("encode capture_state result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, app.ErrDefaultWorkspace):
		return mcp.NewToolResultError("default_workspace: " + err.Error())
	case errors.Is(err, app.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, app.ErrInvalidQuizDocument),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrInvalidPosition):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
