package domain

import (
	"slices"
	"strings"
	"time"
)

// TodoKind identifies a todo's place in the epic/story/task hierarchy.
type TodoKind string

const (
	KindEpic  TodoKind = "epic"
	KindStory TodoKind = "story"
	KindTask  TodoKind = "task"
)

var validKinds = []TodoKind{KindEpic, KindStory, KindTask}

// Todo is a single item in a workspace's flat collection. ParentID is
// empty for roots; Order is dense and zero-based among non-archived
// todos sharing the same ParentID.
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      TodoKind  `json:"type"`
	Completed bool      `json:"completed"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
	ParentID  string    `json:"parentId"`
	Order     int       `json:"order"`
}

// TodoInput carries the fields needed to construct a Todo.
type TodoInput struct {
	ID       string
	Title    string
	Kind     TodoKind
	ParentID string
	Order    int
}

// NewTodo constructs a new value for this package.
func NewTodo(in TodoInput, now time.Time) (Todo, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.ParentID = strings.TrimSpace(in.ParentID)

	if in.ID == "" {
		return Todo{}, ErrInvalidID
	}
	if in.Title == "" {
		return Todo{}, ErrInvalidTitle
	}
	if !slices.Contains(validKinds, in.Kind) {
		return Todo{}, ErrInvalidKind
	}
	if in.Order < 0 {
		return Todo{}, ErrInvalidPosition
	}
	if in.Kind == KindEpic && in.ParentID != "" {
		return Todo{}, ErrInvalidParent
	}
	if in.Kind == KindStory && in.ParentID == "" {
		return Todo{}, ErrInvalidParent
	}

	return Todo{
		ID:        in.ID,
		Title:     in.Title,
		Kind:      in.Kind,
		ParentID:  in.ParentID,
		Order:     in.Order,
		CreatedAt: now.UTC(),
	}, nil
}

// ParseTodoKind returns the TodoKind for a raw string.
func ParseTodoKind(raw string) (TodoKind, error) {
	kind := TodoKind(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(validKinds, kind) {
		return "", ErrInvalidKind
	}
	return kind, nil
}

// ChildKind returns the kind a child of this todo must have. Epics
// hold stories and stories hold tasks; tasks are leaves.
func (t Todo) ChildKind() (TodoKind, bool) {
	switch t.Kind {
	case KindEpic:
		return KindStory, true
	case KindStory:
		return KindTask, true
	default:
		return "", false
	}
}

// AcceptsChild reports whether a todo of the given kind may parent to t.
func (t Todo) AcceptsChild(kind TodoKind) bool {
	want, ok := t.ChildKind()
	return ok && want == kind
}

// RootKindAllowed reports whether a todo of the given kind may live at
// the top level. Stories always need an epic; tasks may float free.
func RootKindAllowed(kind TodoKind) bool {
	return kind == KindEpic || kind == KindTask
}

// Rename renames the requested operation.
func (t *Todo) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	t.Title = title
	return nil
}

// Toggle flips the completed flag.
func (t *Todo) Toggle() {
	t.Completed = !t.Completed
}

// Archive archives the requested operation. The todo keeps its last
// Order but stops participating in the dense sibling sequence.
func (t *Todo) Archive() {
	t.Archived = true
}

// Restore un-archives the todo and places it at the given slot among
// its non-archived siblings.
func (t *Todo) Restore(order int) error {
	if order < 0 {
		return ErrInvalidPosition
	}
	t.Archived = false
	t.Order = order
	return nil
}

// MoveTo re-parents the todo and places it at the given slot in the
// destination sibling group.
func (t *Todo) MoveTo(parentID string, order int) error {
	parentID = strings.TrimSpace(parentID)
	if order < 0 {
		return ErrInvalidPosition
	}
	if parentID == "" && !RootKindAllowed(t.Kind) {
		return ErrInvalidParent
	}
	t.ParentID = parentID
	t.Order = order
	return nil
}
