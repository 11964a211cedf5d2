package app

import (
	"context"
	"slices"
	"strings"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// ListTodos returns the full flat collection for a workspace.
func (s *Service) ListTodos(ctx context.Context, workspaceID string) ([]domain.Todo, error) {
	return s.repo.LoadTodos(ctx, workspaceID)
}

// Children returns the non-archived todos under parentID sorted by Order.
func (s *Service) Children(ctx context.Context, workspaceID, parentID string) ([]domain.Todo, error) {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return siblingsOf(todos, parentID), nil
}

// ArchivedTodos returns archived todos, newest first.
func (s *Service) ArchivedTodos(ctx context.Context, workspaceID string) ([]domain.Todo, error) {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	archived := make([]domain.Todo, 0)
	for _, todo := range todos {
		if todo.Archived {
			archived = append(archived, todo)
		}
	}
	slices.SortStableFunc(archived, func(a, b domain.Todo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return archived, nil
}

// GetTodo returns one todo by ID.
func (s *Service) GetTodo(ctx context.Context, workspaceID, id string) (domain.Todo, error) {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return domain.Todo{}, err
	}
	for _, todo := range todos {
		if todo.ID == id {
			return todo, nil
		}
	}
	return domain.Todo{}, ErrNotFound
}

// CreateTodoInput holds input values for create todo operations.
type CreateTodoInput struct {
	WorkspaceID string
	Title       string
	Kind        domain.TodoKind
	ParentID    string
}

// CreateTodo appends a todo to the end of its sibling group.
func (s *Service) CreateTodo(ctx context.Context, in CreateTodoInput) (domain.Todo, error) {
	todos, err := s.repo.LoadTodos(ctx, in.WorkspaceID)
	if err != nil {
		return domain.Todo{}, err
	}
	parentID := strings.TrimSpace(in.ParentID)
	if err := checkParent(todos, parentID, in.Kind); err != nil {
		return domain.Todo{}, err
	}
	todo, err := domain.NewTodo(domain.TodoInput{
		ID:       s.idGen(),
		Title:    in.Title,
		Kind:     in.Kind,
		ParentID: parentID,
		Order:    len(siblingsOf(todos, parentID)),
	}, s.clock())
	if err != nil {
		return domain.Todo{}, err
	}
	todos = append(todos, todo)
	if err := s.repo.SaveTodos(ctx, in.WorkspaceID, todos); err != nil {
		return domain.Todo{}, err
	}
	return todo, nil
}

// ToggleTodo flips a todo's completed flag. Unknown IDs are a silent no-op.
func (s *Service) ToggleTodo(ctx context.Context, workspaceID, id string) error {
	return s.mutateTodo(ctx, workspaceID, id, func(todo *domain.Todo, _ []domain.Todo) error {
		todo.Toggle()
		return nil
	})
}

// RenameTodo retitles a todo. Unknown IDs are a silent no-op.
func (s *Service) RenameTodo(ctx context.Context, workspaceID, id, title string) error {
	return s.mutateTodo(ctx, workspaceID, id, func(todo *domain.Todo, _ []domain.Todo) error {
		return todo.Rename(title)
	})
}

// ArchiveTodo archives a todo and closes the gap in its sibling group.
// Unknown IDs are a silent no-op.
func (s *Service) ArchiveTodo(ctx context.Context, workspaceID, id string) error {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(todos, func(t domain.Todo) bool { return t.ID == id })
	if idx < 0 || todos[idx].Archived {
		return nil
	}
	parentID := todos[idx].ParentID
	todos[idx].Archive()
	reindexSiblings(todos, parentID)
	return s.repo.SaveTodos(ctx, workspaceID, todos)
}

// RestoreTodo un-archives a todo, appending it to the end of its
// sibling group. Unknown IDs are a silent no-op.
func (s *Service) RestoreTodo(ctx context.Context, workspaceID, id string) error {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(todos, func(t domain.Todo) bool { return t.ID == id })
	if idx < 0 || !todos[idx].Archived {
		return nil
	}
	order := len(siblingsOf(todos, todos[idx].ParentID))
	if err := todos[idx].Restore(order); err != nil {
		return err
	}
	return s.repo.SaveTodos(ctx, workspaceID, todos)
}

// DeleteTodo removes a todo and its whole subtree, then closes the
// gaps left in the affected sibling groups. Unknown IDs are a silent
// no-op.
func (s *Service) DeleteTodo(ctx context.Context, workspaceID, id string) error {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(todos, func(t domain.Todo) bool { return t.ID == id }) {
		return nil
	}
	doomed := collectSubtree(todos, id)
	kept := make([]domain.Todo, 0, len(todos))
	parents := map[string]struct{}{}
	for _, todo := range todos {
		if _, gone := doomed[todo.ID]; gone {
			parents[todo.ParentID] = struct{}{}
			continue
		}
		kept = append(kept, todo)
	}
	for parentID := range parents {
		reindexSiblings(kept, parentID)
	}
	return s.repo.SaveTodos(ctx, workspaceID, kept)
}

// MoveTodo re-parents a todo, appending it to the end of the new
// parent's children and closing the gap it left behind.
func (s *Service) MoveTodo(ctx context.Context, workspaceID, id, newParentID string) error {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(todos, func(t domain.Todo) bool { return t.ID == id })
	if idx < 0 {
		return nil
	}
	newParentID = strings.TrimSpace(newParentID)
	if newParentID == id {
		return domain.ErrInvalidParent
	}
	if _, cyclic := collectSubtree(todos, id)[newParentID]; cyclic {
		return domain.ErrInvalidParent
	}
	if err := checkParent(todos, newParentID, todos[idx].Kind); err != nil {
		return err
	}
	oldParent := todos[idx].ParentID
	if oldParent == newParentID {
		return nil
	}
	order := len(siblingsOf(todos, newParentID))
	if err := todos[idx].MoveTo(newParentID, order); err != nil {
		return err
	}
	reindexSiblings(todos, oldParent)
	return s.repo.SaveTodos(ctx, workspaceID, todos)
}

// ReorderTodos moves the non-archived child of parentID at fromIndex
// to toIndex and reassigns dense orders across the group.
func (s *Service) ReorderTodos(ctx context.Context, workspaceID, parentID string, fromIndex, toIndex int) error {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return err
	}
	siblings := siblingsOf(todos, parentID)
	if fromIndex < 0 || fromIndex >= len(siblings) || toIndex < 0 || toIndex >= len(siblings) {
		return domain.ErrInvalidPosition
	}
	if fromIndex == toIndex {
		return nil
	}
	moved := siblings[fromIndex]
	siblings = slices.Delete(siblings, fromIndex, fromIndex+1)
	siblings = slices.Insert(siblings, toIndex, moved)
	orderByID := make(map[string]int, len(siblings))
	for i, todo := range siblings {
		orderByID[todo.ID] = i
	}
	for i := range todos {
		if order, ok := orderByID[todos[i].ID]; ok {
			todos[i].Order = order
		}
	}
	return s.repo.SaveTodos(ctx, workspaceID, todos)
}

// mutateTodo applies fn to one todo by ID and persists the collection.
// A missing ID returns nil without touching the store.
func (s *Service) mutateTodo(ctx context.Context, workspaceID, id string, fn func(*domain.Todo, []domain.Todo) error) error {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(todos, func(t domain.Todo) bool { return t.ID == id })
	if idx < 0 {
		return nil
	}
	if err := fn(&todos[idx], todos); err != nil {
		return err
	}
	return s.repo.SaveTodos(ctx, workspaceID, todos)
}

// checkParent validates the destination parent for a todo of the given
// kind. An empty parentID means the top level.
func checkParent(todos []domain.Todo, parentID string, kind domain.TodoKind) error {
	if parentID == "" {
		if !domain.RootKindAllowed(kind) {
			return domain.ErrInvalidParent
		}
		return nil
	}
	for _, todo := range todos {
		if todo.ID != parentID {
			continue
		}
		if todo.Archived || !todo.AcceptsChild(kind) {
			return domain.ErrInvalidParent
		}
		return nil
	}
	return domain.ErrInvalidParent
}

// siblingsOf returns the non-archived todos under parentID sorted by
// Order, with CreatedAt then ID as stable tiebreakers.
func siblingsOf(todos []domain.Todo, parentID string) []domain.Todo {
	out := make([]domain.Todo, 0)
	for _, todo := range todos {
		if !todo.Archived && todo.ParentID == parentID {
			out = append(out, todo)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Todo) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// reindexSiblings reassigns dense zero-based orders to the non-archived
// todos under parentID, in place.
func reindexSiblings(todos []domain.Todo, parentID string) {
	siblings := siblingsOf(todos, parentID)
	orderByID := make(map[string]int, len(siblings))
	for i, todo := range siblings {
		orderByID[todo.ID] = i
	}
	for i := range todos {
		if order, ok := orderByID[todos[i].ID]; ok {
			todos[i].Order = order
		}
	}
}

// collectSubtree returns the IDs of the todo and all its descendants.
func collectSubtree(todos []domain.Todo, rootID string) map[string]struct{} {
	childrenByParent := map[string][]string{}
	for _, todo := range todos {
		if todo.ParentID != "" {
			childrenByParent[todo.ParentID] = append(childrenByParent[todo.ParentID], todo.ID)
		}
	}
	out := map[string]struct{}{}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = struct{}{}
		queue = append(queue, childrenByParent[id]...)
	}
	return out
}
