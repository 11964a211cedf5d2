package app

import (
	"context"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// Repository persists whole collections at a time. Loads of missing or
// unreadable records return empty state, never an error the caller has
// to branch on; saves replace the full record synchronously.
type Repository interface {
	LoadWorkspaces(context.Context) ([]domain.Workspace, error)
	SaveWorkspaces(context.Context, []domain.Workspace) error

	LoadActiveWorkspace(context.Context) (string, error)
	SaveActiveWorkspace(context.Context, string) error

	LoadTodos(context.Context, string) ([]domain.Todo, error)
	SaveTodos(context.Context, string, []domain.Todo) error
	DeleteTodos(context.Context, string) error

	LoadQuizzes(context.Context) ([]domain.Quiz, error)
	SaveQuizzes(context.Context, []domain.Quiz) error
}
