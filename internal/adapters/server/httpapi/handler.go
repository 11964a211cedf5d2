// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// errBadRequest marks malformed request payloads for status mapping.
var errBadRequest = errors.New("invalid request")

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	svc *app.Service
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the application service.
func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(r.URL.Path)
	switch {
	case len(segments) >= 1 && segments[0] == "workspaces":
		h.routeWorkspaces(w, r, segments[1:])
	case len(segments) >= 1 && segments[0] == "quizzes":
		h.routeQuizzes(w, r, segments[1:])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	}
}

// routeWorkspaces dispatches `/workspaces...` requests.
func (h *Handler) routeWorkspaces(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleListWorkspaces(w, r)
		case http.MethodPost:
			h.handleCreateWorkspace(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case len(rest) == 1 && rest[0] == "active":
		switch r.Method {
		case http.MethodGet:
			h.handleGetActiveWorkspace(w, r)
		case http.MethodPut:
			h.handleSetActiveWorkspace(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	case len(rest) == 1:
		switch r.Method {
		case http.MethodPatch:
			h.handleRenameWorkspace(w, r, rest[0])
		case http.MethodDelete:
			h.handleDeleteWorkspace(w, r, rest[0])
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	case rest[1] == "todos":
		h.routeTodos(w, r, rest[0], rest[2:])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	}
}

// routeTodos dispatches `/workspaces/{id}/todos...` requests.
func (h *Handler) routeTodos(w http.ResponseWriter, r *http.Request, workspaceID string, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleListTodos(w, r, workspaceID)
		case http.MethodPost:
			h.handleCreateTodo(w, r, workspaceID)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case len(rest) == 1 && rest[0] == "tree":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleTree(w, r, workspaceID)
	case len(rest) == 1 && rest[0] == "archived":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleArchivedTodos(w, r, workspaceID)
	case len(rest) == 1 && rest[0] == "reorder":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleReorderTodos(w, r, workspaceID)
	case len(rest) == 1:
		switch r.Method {
		case http.MethodPatch:
			h.handleUpdateTodo(w, r, workspaceID, rest[0])
		case http.MethodDelete:
			h.handleDeleteTodo(w, r, workspaceID, rest[0])
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	case len(rest) == 2 && rest[1] == "archive":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleArchiveTodo(w, r, workspaceID, rest[0])
	case len(rest) == 2 && rest[1] == "restore":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleRestoreTodo(w, r, workspaceID, rest[0])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	}
}

// routeQuizzes dispatches `/quizzes...` requests.
func (h *Handler) routeQuizzes(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.handleListQuizzes(w, r)
		case http.MethodPost:
			h.handleCreateQuiz(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case len(rest) == 1 && rest[0] == "import":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleImportQuiz(w, r)
	case len(rest) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGetQuiz(w, r, rest[0])
		case http.MethodDelete:
			h.handleDeleteQuiz(w, r, rest[0])
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodDelete)
		}
	case len(rest) == 2 && rest[1] == "export":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleExportQuiz(w, r, rest[0])
	default:
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	}
}

func (h *Handler) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.svc.ListWorkspaces(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": workspaces})
}

func (h *Handler) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	ws, err := h.svc.CreateWorkspace(r.Context(), req.Name)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *Handler) handleRenameWorkspace(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	ws, err := h.svc.RenameWorkspace(r.Context(), id, req.Name)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	if ws.ID == "" {
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "workspace not found"})
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *Handler) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteWorkspace(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetActiveWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.svc.ActiveWorkspace(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *Handler) handleSetActiveWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.svc.SetActiveWorkspace(r.Context(), req.ID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	ws, err := h.svc.ActiveWorkspace(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *Handler) handleListTodos(w http.ResponseWriter, r *http.Request, workspaceID string) {
	todos, err := h.svc.ListTodos(r.Context(), workspaceID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request, workspaceID string) {
	roots, err := h.svc.ComposeTree(r.Context(), workspaceID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tree": roots})
}

func (h *Handler) handleArchivedTodos(w http.ResponseWriter, r *http.Request, workspaceID string) {
	todos, err := h.svc.ArchivedTodos(r.Context(), workspaceID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (h *Handler) handleCreateTodo(w http.ResponseWriter, r *http.Request, workspaceID string) {
	var req struct {
		Title    string `json:"title"`
		Kind     string `json:"type"`
		ParentID string `json:"parentId"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	kind, err := domain.ParseTodoKind(req.Kind)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	todo, err := h.svc.CreateTodo(r.Context(), app.CreateTodoInput{
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Kind:        kind,
		ParentID:    req.ParentID,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (h *Handler) handleUpdateTodo(w http.ResponseWriter, r *http.Request, workspaceID, todoID string) {
	var req struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
		ParentID  *string `json:"parentId"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	ctx := r.Context()
	if req.Title != nil {
		if err := h.svc.RenameTodo(ctx, workspaceID, todoID, *req.Title); err != nil {
			writeErrorFrom(w, err)
			return
		}
	}
	if req.Completed != nil {
		current, err := h.svc.GetTodo(ctx, workspaceID, todoID)
		if err == nil && current.Completed != *req.Completed {
			if err := h.svc.ToggleTodo(ctx, workspaceID, todoID); err != nil {
				writeErrorFrom(w, err)
				return
			}
		}
	}
	if req.ParentID != nil {
		if err := h.svc.MoveTodo(ctx, workspaceID, todoID, *req.ParentID); err != nil {
			writeErrorFrom(w, err)
			return
		}
	}
	todo, err := h.svc.GetTodo(ctx, workspaceID, todoID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *Handler) handleDeleteTodo(w http.ResponseWriter, r *http.Request, workspaceID, todoID string) {
	if err := h.svc.DeleteTodo(r.Context(), workspaceID, todoID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleArchiveTodo(w http.ResponseWriter, r *http.Request, workspaceID, todoID string) {
	if err := h.svc.ArchiveTodo(r.Context(), workspaceID, todoID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRestoreTodo(w http.ResponseWriter, r *http.Request, workspaceID, todoID string) {
	if err := h.svc.RestoreTodo(r.Context(), workspaceID, todoID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReorderTodos(w http.ResponseWriter, r *http.Request, workspaceID string) {
	var req struct {
		ParentID  string `json:"parentId"`
		FromIndex int    `json:"fromIndex"`
		ToIndex   int    `json:"toIndex"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.svc.ReorderTodos(r.Context(), workspaceID, req.ParentID, req.FromIndex, req.ToIndex); err != nil {
		writeErrorFrom(w, err)
		return
	}
	todos, err := h.svc.Children(r.Context(), workspaceID, req.ParentID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"todos": todos})
}

func (h *Handler) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.svc.ListQuizzes(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (h *Handler) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	quiz, err := h.svc.CreateQuiz(r.Context(), req.Title)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request, id string) {
	quiz, err := h.svc.GetQuiz(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) handleDeleteQuiz(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteQuiz(r.Context(), id); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportQuiz(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.svc.ExportQuiz(r.Context(), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleImportQuiz(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()
	raw, err := io.ReadAll(reader)
	if err != nil {
		writeErrorFrom(w, fmt.Errorf("read request body: %w", errBadRequest))
		return
	}
	quiz, err := h.svc.ImportQuiz(r.Context(), raw)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// splitPath canonicalizes one request path into route segments.
func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// writeErrorFrom maps service errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{Code: "internal_error", Message: "unknown error"})
	case errors.Is(err, errBadRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{Code: "invalid_request", Message: err.Error()})
	case errors.Is(err, app.ErrDefaultWorkspace):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "default_workspace",
			Message: err.Error(),
			Hint:    "The default workspace cannot be deleted.",
		})
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: err.Error()})
	case errors.Is(err, app.ErrInvalidQuizDocument),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrInvalidPosition):
		writeJSONError(w, http.StatusUnprocessableEntity, APIError{Code: "validation_failed", Message: err.Error()})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{Code: "internal_error", Message: err.Error()})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{Code: "method_not_allowed", Message: "method not allowed"})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(errBadRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", errBadRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
