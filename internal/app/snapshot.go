package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "backlog.snapshot.v1"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version         string              `json:"version"`
	ExportedAt      time.Time           `json:"exported_at"`
	ActiveWorkspace string              `json:"active_workspace"`
	Workspaces      []SnapshotWorkspace `json:"workspaces"`
	Quizzes         []domain.Quiz       `json:"quizzes,omitempty"`
}

// SnapshotWorkspace bundles one workspace with its full todo collection.
type SnapshotWorkspace struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Todos     []domain.Todo `json:"todos"`
}

// ExportSnapshot handles export snapshot.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	workspaces, err := s.ListWorkspaces(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	active, err := s.ActiveWorkspace(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	quizzes, err := s.ListQuizzes(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:         SnapshotVersion,
		ExportedAt:      s.clock().UTC(),
		ActiveWorkspace: active.ID,
		Workspaces:      make([]SnapshotWorkspace, 0, len(workspaces)),
		Quizzes:         quizzes,
	}
	for _, ws := range workspaces {
		todos, err := s.repo.LoadTodos(ctx, ws.ID)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Workspaces = append(snap.Workspaces, SnapshotWorkspace{
			ID:        ws.ID,
			Name:      ws.Name,
			CreatedAt: ws.CreatedAt.UTC(),
			Todos:     todos,
		})
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot handles import snapshot. Collections are replaced
// wholesale; workspaces absent from the snapshot are left alone.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	existing, err := s.ListWorkspaces(ctx)
	if err != nil {
		return err
	}
	byID := map[string]int{}
	for i, ws := range existing {
		byID[ws.ID] = i
	}
	for _, sw := range snap.Workspaces {
		if idx, ok := byID[sw.ID]; ok {
			existing[idx].Name = sw.Name
			existing[idx].CreatedAt = sw.CreatedAt.UTC()
			continue
		}
		existing = append(existing, domain.Workspace{ID: sw.ID, Name: sw.Name, CreatedAt: sw.CreatedAt.UTC()})
		byID[sw.ID] = len(existing) - 1
	}
	if err := s.repo.SaveWorkspaces(ctx, existing); err != nil {
		return err
	}
	for _, sw := range snap.Workspaces {
		if err := s.repo.SaveTodos(ctx, sw.ID, sw.Todos); err != nil {
			return err
		}
	}
	if len(snap.Quizzes) > 0 {
		if err := s.repo.SaveQuizzes(ctx, snap.Quizzes); err != nil {
			return err
		}
	}
	if snap.ActiveWorkspace != "" {
		if _, ok := byID[snap.ActiveWorkspace]; ok {
			if err := s.repo.SaveActiveWorkspace(ctx, snap.ActiveWorkspace); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	workspaceIDs := map[string]struct{}{}
	for i, ws := range s.Workspaces {
		if strings.TrimSpace(ws.ID) == "" {
			return fmt.Errorf("workspaces[%d].id is required", i)
		}
		if strings.TrimSpace(ws.Name) == "" {
			return fmt.Errorf("workspaces[%d].name is required", i)
		}
		if ws.CreatedAt.IsZero() {
			return fmt.Errorf("workspaces[%d].created_at is required", i)
		}
		if _, exists := workspaceIDs[ws.ID]; exists {
			return fmt.Errorf("duplicate workspace id: %q", ws.ID)
		}
		workspaceIDs[ws.ID] = struct{}{}

		todoIDs := map[string]struct{}{}
		for j, todo := range ws.Todos {
			if strings.TrimSpace(todo.ID) == "" {
				return fmt.Errorf("workspaces[%d].todos[%d].id is required", i, j)
			}
			if strings.TrimSpace(todo.Title) == "" {
				return fmt.Errorf("workspaces[%d].todos[%d].title is required", i, j)
			}
			if _, err := domain.ParseTodoKind(string(todo.Kind)); err != nil {
				return fmt.Errorf("workspaces[%d].todos[%d].type must be epic|story|task", i, j)
			}
			if todo.Order < 0 {
				return fmt.Errorf("workspaces[%d].todos[%d].order must be >= 0", i, j)
			}
			if todo.CreatedAt.IsZero() {
				return fmt.Errorf("workspaces[%d].todos[%d].createdAt is required", i, j)
			}
			if _, exists := todoIDs[todo.ID]; exists {
				return fmt.Errorf("duplicate todo id in workspace %q: %q", ws.ID, todo.ID)
			}
			todoIDs[todo.ID] = struct{}{}
		}
		for j, todo := range ws.Todos {
			if todo.ParentID == todo.ID {
				return fmt.Errorf("workspaces[%d].todos[%d].parentId cannot reference itself", i, j)
			}
		}
	}

	if s.ActiveWorkspace != "" && len(s.Workspaces) > 0 {
		if _, ok := workspaceIDs[s.ActiveWorkspace]; !ok {
			return fmt.Errorf("active_workspace references unknown workspace %q", s.ActiveWorkspace)
		}
	}

	quizIDs := map[string]struct{}{}
	for i, quiz := range s.Quizzes {
		if strings.TrimSpace(quiz.ID) == "" {
			return fmt.Errorf("quizzes[%d].id is required", i)
		}
		if strings.TrimSpace(quiz.Title) == "" {
			return fmt.Errorf("quizzes[%d].title is required", i)
		}
		if _, exists := quizIDs[quiz.ID]; exists {
			return fmt.Errorf("duplicate quiz id: %q", quiz.ID)
		}
		quizIDs[quiz.ID] = struct{}{}
	}

	return nil
}

// sort handles sort.
func (s *Snapshot) sort() {
	sort.Slice(s.Workspaces, func(i, j int) bool {
		a := s.Workspaces[i]
		b := s.Workspaces[j]
		if (a.ID == domain.DefaultWorkspaceID) != (b.ID == domain.DefaultWorkspaceID) {
			return a.ID == domain.DefaultWorkspaceID
		}
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	for w := range s.Workspaces {
		todos := s.Workspaces[w].Todos
		sort.Slice(todos, func(i, j int) bool {
			a := todos[i]
			b := todos[j]
			if a.ParentID == b.ParentID {
				if a.Order == b.Order {
					return a.ID < b.ID
				}
				return a.Order < b.Order
			}
			return a.ParentID < b.ParentID
		})
	}
	sort.Slice(s.Quizzes, func(i, j int) bool {
		a := s.Quizzes[i]
		b := s.Quizzes[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
