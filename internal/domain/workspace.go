package domain

import (
	"strings"
	"time"
)

const (
	// DefaultWorkspaceID is reserved; the workspace carrying it is
	// synthesized on first load and can never be deleted.
	DefaultWorkspaceID   = "default"
	DefaultWorkspaceName = "Personal"
)

// Workspace is an isolated todo collection.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewWorkspace constructs a new value for this package.
func NewWorkspace(id, name string, now time.Time) (Workspace, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Workspace{}, ErrInvalidID
	}
	if name == "" {
		return Workspace{}, ErrInvalidName
	}
	return Workspace{
		ID:        id,
		Name:      name,
		CreatedAt: now.UTC(),
	}, nil
}

// DefaultWorkspace returns the reserved workspace synthesized when a
// store is seen for the first time.
func DefaultWorkspace(now time.Time) Workspace {
	return Workspace{
		ID:        DefaultWorkspaceID,
		Name:      DefaultWorkspaceName,
		CreatedAt: now.UTC(),
	}
}

// IsDefault reports whether this is the reserved workspace.
func (w Workspace) IsDefault() bool {
	return w.ID == DefaultWorkspaceID
}

// Rename renames the requested operation.
func (w *Workspace) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	w.Name = name
	return nil
}
