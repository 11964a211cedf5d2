package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos in a workspace",
}

// todo add
var todoAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoAdd,
}

var (
	todoAddKind   string
	todoAddParent string
)

// todo tree
var todoTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the todo hierarchy with leaf-task progress",
	RunE:  runTodoTree,
}

var todoTreeJSON bool

// todo list
var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos as a flat table",
	RunE:  runTodoList,
}

var (
	todoListJSON     bool
	todoListArchived bool
)

// todo done
var todoDoneCmd = &cobra.Command{
	Use:   "done <id>...",
	Short: "Toggle completion for one or more todos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoDone,
}

// todo rename
var todoRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a todo",
	Args:  cobra.ExactArgs(2),
	RunE:  runTodoRename,
}

// todo move
var todoMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Re-parent a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoMove,
}

var todoMoveParent string

// todo reorder
var todoReorderCmd = &cobra.Command{
	Use:   "reorder <from> <to>",
	Short: "Move a todo within its sibling group by position",
	Args:  cobra.ExactArgs(2),
	RunE:  runTodoReorder,
}

var todoReorderParent string

// todo archive / restore / rm
var todoArchiveCmd = &cobra.Command{
	Use:   "archive <id>...",
	Short: "Archive one or more todos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoArchive,
}

var todoRestoreCmd = &cobra.Command{
	Use:   "restore <id>...",
	Short: "Restore archived todos to the end of their sibling group",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoRestore,
}

var todoRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete todos and their subtrees",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoRm,
}

var todoWorkspace string

func init() {
	rootCmd.AddCommand(todoCmd)
	todoCmd.AddCommand(todoAddCmd, todoTreeCmd, todoListCmd, todoDoneCmd, todoRenameCmd,
		todoMoveCmd, todoReorderCmd, todoArchiveCmd, todoRestoreCmd, todoRmCmd)

	todoCmd.PersistentFlags().StringVarP(&todoWorkspace, "workspace", "w", "", "Workspace ID or name (defaults to the active workspace)")

	todoAddCmd.Flags().StringVarP(&todoAddKind, "type", "t", "task", "Todo type (epic, story, task)")
	todoAddCmd.Flags().StringVarP(&todoAddParent, "parent", "p", "", "Parent todo ID")

	todoTreeCmd.Flags().BoolVar(&todoTreeJSON, "json", false, "Output as JSON")

	todoListCmd.Flags().BoolVar(&todoListJSON, "json", false, "Output as JSON")
	todoListCmd.Flags().BoolVar(&todoListArchived, "archived", false, "Show archived todos only")

	todoMoveCmd.Flags().StringVarP(&todoMoveParent, "parent", "p", "", "New parent todo ID (empty moves to the top level)")

	todoReorderCmd.Flags().StringVarP(&todoReorderParent, "parent", "p", "", "Parent whose children to reorder (empty for top level)")
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}
	kind, err := domain.ParseTodoKind(todoAddKind)
	if err != nil {
		return fmt.Errorf("invalid todo type %q (want epic, story, or task)", todoAddKind)
	}

	todo, err := rt.svc.CreateTodo(cmd.Context(), app.CreateTodoInput{
		WorkspaceID: ws.ID,
		Title:       args[0],
		Kind:        kind,
		ParentID:    todoAddParent,
	})
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	fmt.Printf("Created %s %s: %s\n", todo.Kind, todo.ID, todo.Title)
	return nil
}

func runTodoTree(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}
	roots, err := rt.svc.ComposeTree(cmd.Context(), ws.ID)
	if err != nil {
		return fmt.Errorf("compose tree: %w", err)
	}

	if todoTreeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(roots)
	}

	if len(roots) == 0 {
		fmt.Printf("Workspace %s has no todos.\n", ws.Name)
		return nil
	}
	for i, root := range roots {
		printTreeNode(os.Stdout, root, "", i == len(roots)-1)
	}
	return nil
}

func runTodoList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}

	var todos []domain.Todo
	if todoListArchived {
		todos, err = rt.svc.ArchivedTodos(cmd.Context(), ws.ID)
	} else {
		todos, err = rt.svc.ListTodos(cmd.Context(), ws.ID)
	}
	if err != nil {
		return fmt.Errorf("list todos: %w", err)
	}

	if todoListJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(todos)
	}

	if len(todos) == 0 {
		fmt.Println("No todos found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATE\tORDER\tTITLE")
	for _, t := range todos {
		state := "open"
		if t.Completed {
			state = "done"
		}
		if t.Archived {
			state = "archived"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Kind, state, t.Order, t.Title)
	}
	return w.Flush()
}

func runTodoDone(cmd *cobra.Command, args []string) error {
	return forEachTodo(cmd, args, "Toggled", func(rt *runtime, wsID, id string) error {
		return rt.svc.ToggleTodo(cmd.Context(), wsID, id)
	})
}

func runTodoRename(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}
	if err := rt.svc.RenameTodo(cmd.Context(), ws.ID, args[0], args[1]); err != nil {
		return fmt.Errorf("rename todo: %w", err)
	}
	fmt.Printf("Renamed %s: %s\n", args[0], args[1])
	return nil
}

func runTodoMove(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}
	if err := rt.svc.MoveTodo(cmd.Context(), ws.ID, args[0], todoMoveParent); err != nil {
		return fmt.Errorf("move todo: %w", err)
	}
	if todoMoveParent == "" {
		fmt.Printf("Moved %s to the top level\n", args[0])
	} else {
		fmt.Printf("Moved %s under %s\n", args[0], todoMoveParent)
	}
	return nil
}

func runTodoReorder(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}
	from, to, err := parseReorderArgs(args)
	if err != nil {
		return err
	}
	if err := rt.svc.ReorderTodos(cmd.Context(), ws.ID, todoReorderParent, from, to); err != nil {
		return fmt.Errorf("reorder todos: %w", err)
	}
	fmt.Printf("Moved position %d to %d\n", from, to)
	return nil
}

func runTodoArchive(cmd *cobra.Command, args []string) error {
	return forEachTodo(cmd, args, "Archived", func(rt *runtime, wsID, id string) error {
		return rt.svc.ArchiveTodo(cmd.Context(), wsID, id)
	})
}

func runTodoRestore(cmd *cobra.Command, args []string) error {
	return forEachTodo(cmd, args, "Restored", func(rt *runtime, wsID, id string) error {
		return rt.svc.RestoreTodo(cmd.Context(), wsID, id)
	})
}

func runTodoRm(cmd *cobra.Command, args []string) error {
	return forEachTodo(cmd, args, "Deleted", func(rt *runtime, wsID, id string) error {
		return rt.svc.DeleteTodo(cmd.Context(), wsID, id)
	})
}

// forEachTodo applies one mutation per ID against the resolved workspace.
func forEachTodo(cmd *cobra.Command, ids []string, verb string, fn func(rt *runtime, wsID, id string) error) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := currentWorkspace(cmd, rt, todoWorkspace)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := fn(rt, ws.ID, id); err != nil {
			return fmt.Errorf("%s %s: %w", strings.ToLower(verb), id, err)
		}
		fmt.Printf("%s %s\n", verb, id)
	}
	return nil
}

// parseReorderArgs parses the two positional indices for reorder.
func parseReorderArgs(args []string) (int, int, error) {
	var from, to int
	if _, err := fmt.Sscanf(args[0], "%d", &from); err != nil {
		return 0, 0, fmt.Errorf("invalid from position %q", args[0])
	}
	if _, err := fmt.Sscanf(args[1], "%d", &to); err != nil {
		return 0, 0, fmt.Errorf("invalid to position %q", args[1])
	}
	return from, to, nil
}

// printTreeNode prints one subtree with box-drawing connectors.
func printTreeNode(w io.Writer, node *app.TreeNode, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		connector = ""
	}

	check := "[ ]"
	if node.Completed {
		check = "[x]"
	}
	progress := ""
	if len(node.Children) > 0 {
		progress = fmt.Sprintf(" %d/%d", node.Done, node.Total)
	}
	fmt.Fprintf(w, "%s%s%s %s (%s)%s  %s\n", prefix, connector, check, node.Title, node.Kind, progress, node.ID)

	childPrefix := prefix
	if prefix != "" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	} else {
		childPrefix = "  "
	}
	for i, child := range node.Children {
		printTreeNode(w, child, childPrefix, i == len(node.Children)-1)
	}
}
