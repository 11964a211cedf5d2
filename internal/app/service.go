package app

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ServiceConfig tunes service behavior that is not wired per call.
type ServiceConfig struct {
	DefaultWorkspaceName string
}

// Service exposes all workspace, todo, and quiz operations over one
// repository. Every mutation persists the affected collection
// synchronously before returning.
type Service struct {
	repo                 Repository
	idGen                IDGenerator
	clock                Clock
	defaultWorkspaceName string
}

// NewService wires a service. Nil idGen and clock fall back to UUIDs
// and wall-clock time.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	if strings.TrimSpace(cfg.DefaultWorkspaceName) == "" {
		cfg.DefaultWorkspaceName = domain.DefaultWorkspaceName
	}
	return &Service{
		repo:                 repo,
		idGen:                idGen,
		clock:                clock,
		defaultWorkspaceName: strings.TrimSpace(cfg.DefaultWorkspaceName),
	}
}

// EnsureDefaultWorkspace synthesizes the reserved workspace if the
// store has never seen one.
func (s *Service) EnsureDefaultWorkspace(ctx context.Context) (domain.Workspace, error) {
	workspaces, err := s.repo.LoadWorkspaces(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.IsDefault() {
			return ws, nil
		}
	}
	def := domain.DefaultWorkspace(s.clock())
	def.Name = s.defaultWorkspaceName
	workspaces = append([]domain.Workspace{def}, workspaces...)
	if err := s.repo.SaveWorkspaces(ctx, workspaces); err != nil {
		return domain.Workspace{}, err
	}
	return def, nil
}

// ListWorkspaces lists workspaces, default first, then by creation time.
func (s *Service) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	if _, err := s.EnsureDefaultWorkspace(ctx); err != nil {
		return nil, err
	}
	workspaces, err := s.repo.LoadWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(workspaces, func(a, b domain.Workspace) int {
		if a.IsDefault() != b.IsDefault() {
			if a.IsDefault() {
				return -1
			}
			return 1
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return workspaces, nil
}

// CreateWorkspace creates workspace.
func (s *Service) CreateWorkspace(ctx context.Context, name string) (domain.Workspace, error) {
	ws, err := domain.NewWorkspace(s.idGen(), name, s.clock())
	if err != nil {
		return domain.Workspace{}, err
	}
	workspaces, err := s.ListWorkspaces(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	workspaces = append(workspaces, ws)
	if err := s.repo.SaveWorkspaces(ctx, workspaces); err != nil {
		return domain.Workspace{}, err
	}
	return ws, nil
}

// RenameWorkspace renames a workspace. Unknown IDs are a silent no-op.
func (s *Service) RenameWorkspace(ctx context.Context, id, name string) (domain.Workspace, error) {
	workspaces, err := s.ListWorkspaces(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	for i := range workspaces {
		if workspaces[i].ID != id {
			continue
		}
		if err := workspaces[i].Rename(name); err != nil {
			return domain.Workspace{}, err
		}
		if err := s.repo.SaveWorkspaces(ctx, workspaces); err != nil {
			return domain.Workspace{}, err
		}
		return workspaces[i], nil
	}
	return domain.Workspace{}, nil
}

// DeleteWorkspace deletes a workspace and its todo collection. The
// default workspace is protected; deleting the active workspace resets
// the active ID to the default. Unknown IDs are a silent no-op.
func (s *Service) DeleteWorkspace(ctx context.Context, id string) error {
	if id == domain.DefaultWorkspaceID {
		return ErrDefaultWorkspace
	}
	workspaces, err := s.ListWorkspaces(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(workspaces, func(ws domain.Workspace) bool { return ws.ID == id })
	if idx < 0 {
		return nil
	}
	workspaces = slices.Delete(workspaces, idx, idx+1)
	if err := s.repo.SaveWorkspaces(ctx, workspaces); err != nil {
		return err
	}
	active, err := s.repo.LoadActiveWorkspace(ctx)
	if err != nil {
		return err
	}
	if active == id {
		if err := s.repo.SaveActiveWorkspace(ctx, domain.DefaultWorkspaceID); err != nil {
			return err
		}
	}
	return s.repo.DeleteTodos(ctx, id)
}

// GetWorkspace returns one workspace by ID.
func (s *Service) GetWorkspace(ctx context.Context, id string) (domain.Workspace, error) {
	workspaces, err := s.ListWorkspaces(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.ID == id {
			return ws, nil
		}
	}
	return domain.Workspace{}, ErrNotFound
}

// ActiveWorkspace resolves the active workspace, falling back to the
// default when the stored ID no longer resolves.
func (s *Service) ActiveWorkspace(ctx context.Context) (domain.Workspace, error) {
	def, err := s.EnsureDefaultWorkspace(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	active, err := s.repo.LoadActiveWorkspace(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	if active == "" {
		return def, nil
	}
	workspaces, err := s.repo.LoadWorkspaces(ctx)
	if err != nil {
		return domain.Workspace{}, err
	}
	for _, ws := range workspaces {
		if ws.ID == active {
			return ws, nil
		}
	}
	return def, nil
}

// SetActiveWorkspace sets the active workspace ID; the ID must resolve.
func (s *Service) SetActiveWorkspace(ctx context.Context, id string) error {
	if _, err := s.GetWorkspace(ctx, id); err != nil {
		return err
	}
	return s.repo.SaveActiveWorkspace(ctx, id)
}
