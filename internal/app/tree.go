package app

import (
	"context"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// TreeNode is one todo with its composed children.
type TreeNode struct {
	domain.Todo
	Children []*TreeNode `json:"children"`
	// Done and Total count leaf tasks across the subtree; a childless
	// node counts itself.
	Done  int `json:"done"`
	Total int `json:"total"`
}

// FlatNode is one row of a depth-first walk over a composed forest.
type FlatNode struct {
	*TreeNode
	Depth int
}

// ComposeTree builds the forest of non-archived todos for a workspace.
// Todos whose parent is missing or archived are promoted to roots so
// data written by older clients stays visible.
func (s *Service) ComposeTree(ctx context.Context, workspaceID string) ([]*TreeNode, error) {
	todos, err := s.repo.LoadTodos(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return ComposeForest(todos), nil
}

// ComposeForest builds the tree from an already loaded flat collection.
func ComposeForest(todos []domain.Todo) []*TreeNode {
	live := map[string]domain.Todo{}
	for _, todo := range todos {
		if !todo.Archived {
			live[todo.ID] = todo
		}
	}

	var build func(parentID string) []*TreeNode
	build = func(parentID string) []*TreeNode {
		siblings := siblingsOf(todos, parentID)
		nodes := make([]*TreeNode, 0, len(siblings))
		for _, todo := range siblings {
			node := &TreeNode{Todo: todo}
			node.Children = build(todo.ID)
			nodes = append(nodes, node)
		}
		return nodes
	}

	roots := build("")
	for _, todo := range todos {
		if todo.Archived || todo.ParentID == "" {
			continue
		}
		if _, ok := live[todo.ParentID]; ok {
			continue
		}
		// Orphan: promote the whole reachable subtree.
		node := &TreeNode{Todo: todo}
		node.Children = build(todo.ID)
		roots = append(roots, node)
	}

	for _, root := range roots {
		rollup(root)
	}
	return roots
}

// Flatten walks the forest depth-first, annotating each row with its depth.
func Flatten(roots []*TreeNode) []FlatNode {
	out := make([]FlatNode, 0)
	var walk func(node *TreeNode, depth int)
	walk = func(node *TreeNode, depth int) {
		out = append(out, FlatNode{TreeNode: node, Depth: depth})
		for _, child := range node.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return out
}

// rollup computes Done/Total leaf counts bottom-up.
func rollup(node *TreeNode) (done, total int) {
	if len(node.Children) == 0 {
		node.Total = 1
		if node.Completed {
			node.Done = 1
		}
		return node.Done, node.Total
	}
	for _, child := range node.Children {
		d, t := rollup(child)
		done += d
		total += t
	}
	node.Done = done
	node.Total = total
	return done, total
}
