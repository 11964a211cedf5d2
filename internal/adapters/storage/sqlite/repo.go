package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

const driverName = "sqlite"

// Storage keys. Each todo collection lives under its own
// workspace-scoped key; the value is the JSON-encoded full collection.
const (
	keyWorkspaces      = "workspaces"
	keyActiveWorkspace = "active_workspace"
	keyQuizzes         = "quizzes"
	todosKeyPrefix     = "todos_workspace_"
)

// Repository is a key-value store over a single sqlite table. Reads of
// missing or malformed records yield empty state; a malformed value is
// logged and treated as if it were absent.
type Repository struct {
	db  *sql.DB
	log *charmlog.Logger
}

// Open opens or creates the store at path and runs migrations.
func Open(path string, logger *charmlog.Logger) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := newRepository(db, logger)
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a shared in-memory store, useful for ephemeral runs.
func OpenInMemory(logger *charmlog.Logger) (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := newRepository(db, logger)
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func newRepository(db *sql.DB, logger *charmlog.Logger) *Repository {
	if logger == nil {
		logger = charmlog.New(os.Stderr)
	}
	return &Repository{db: db, log: logger}
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// todosKey returns the storage key for one workspace's collection.
func todosKey(workspaceID string) string {
	return todosKeyPrefix + workspaceID
}

// LoadWorkspaces loads the workspace collection.
func (r *Repository) LoadWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	out := []domain.Workspace{}
	if err := r.loadJSON(ctx, keyWorkspaces, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveWorkspaces replaces the workspace collection.
func (r *Repository) SaveWorkspaces(ctx context.Context, workspaces []domain.Workspace) error {
	return r.saveJSON(ctx, keyWorkspaces, workspaces)
}

// LoadActiveWorkspace loads the active workspace ID; missing means "".
func (r *Repository) LoadActiveWorkspace(ctx context.Context) (string, error) {
	value, ok, err := r.get(ctx, keyActiveWorkspace)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// SaveActiveWorkspace replaces the active workspace ID. The value is
// stored as the raw ID string, not JSON.
func (r *Repository) SaveActiveWorkspace(ctx context.Context, id string) error {
	return r.set(ctx, keyActiveWorkspace, id)
}

// LoadTodos loads one workspace's todo collection.
func (r *Repository) LoadTodos(ctx context.Context, workspaceID string) ([]domain.Todo, error) {
	out := []domain.Todo{}
	if err := r.loadJSON(ctx, todosKey(workspaceID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveTodos replaces one workspace's todo collection.
func (r *Repository) SaveTodos(ctx context.Context, workspaceID string, todos []domain.Todo) error {
	return r.saveJSON(ctx, todosKey(workspaceID), todos)
}

// DeleteTodos drops one workspace's todo collection key.
func (r *Repository) DeleteTodos(ctx context.Context, workspaceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, todosKey(workspaceID))
	if err != nil {
		return fmt.Errorf("delete %s: %w", todosKey(workspaceID), err)
	}
	return nil
}

// LoadQuizzes loads the quiz collection.
func (r *Repository) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	out := []domain.Quiz{}
	if err := r.loadJSON(ctx, keyQuizzes, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveQuizzes replaces the quiz collection.
func (r *Repository) SaveQuizzes(ctx context.Context, quizzes []domain.Quiz) error {
	return r.saveJSON(ctx, keyQuizzes, quizzes)
}

// loadJSON reads one record and decodes it into dst. Missing keys
// leave dst untouched; malformed values are logged and skipped so the
// caller sees empty state instead of a decode failure.
func (r *Repository) loadJSON(ctx context.Context, key string, dst any) error {
	value, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		r.log.Warn("discarding malformed record", "key", key, "err", err)
		return nil
	}
	return nil
}

// saveJSON encodes v and replaces the record synchronously.
func (r *Repository) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.set(ctx, key, string(raw))
}

// get reads one raw record.
func (r *Repository) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// set writes one raw record.
func (r *Repository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
