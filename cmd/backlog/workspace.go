package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE:  runWorkspaceList,
}

var workspaceListJSON bool

var workspaceAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"create"},
	Short:   "Create a new workspace",
	Args:    cobra.ExactArgs(1),
	RunE:    runWorkspaceAdd,
}

var workspaceRenameCmd = &cobra.Command{
	Use:   "rename <id-or-name> <new-name>",
	Short: "Rename a workspace",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorkspaceRename,
}

var workspaceRmCmd = &cobra.Command{
	Use:     "rm <id-or-name>",
	Aliases: []string{"delete"},
	Short:   "Delete a workspace and its todos",
	Args:    cobra.ExactArgs(1),
	RunE:    runWorkspaceRm,
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use <id-or-name>",
	Short: "Set the active workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceUse,
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceListCmd, workspaceAddCmd, workspaceRenameCmd, workspaceRmCmd, workspaceUseCmd)

	workspaceListCmd.Flags().BoolVar(&workspaceListJSON, "json", false, "Output as JSON")
}

func runWorkspaceList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	ctx := cmd.Context()

	workspaces, err := rt.svc.ListWorkspaces(ctx)
	if err != nil {
		return fmt.Errorf("list workspaces: %w", err)
	}
	active, err := rt.svc.ActiveWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("resolve active workspace: %w", err)
	}

	if workspaceListJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(workspaces)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFLAGS")
	for _, ws := range workspaces {
		var flags []string
		if ws.ID == active.ID {
			flags = append(flags, "active")
		}
		if ws.IsDefault() {
			flags = append(flags, "default")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ws.ID, ws.Name, strings.Join(flags, ","))
	}
	return w.Flush()
}

func runWorkspaceAdd(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := rt.svc.CreateWorkspace(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	fmt.Printf("Created workspace %s: %s\n", ws.ID, ws.Name)
	return nil
}

func runWorkspaceRename(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()
	ctx := cmd.Context()

	ws, err := findWorkspace(cmd, rt, args[0])
	if err != nil {
		return err
	}
	renamed, err := rt.svc.RenameWorkspace(ctx, ws.ID, args[1])
	if err != nil {
		return fmt.Errorf("rename workspace: %w", err)
	}
	fmt.Printf("Renamed workspace %s: %s\n", renamed.ID, renamed.Name)
	return nil
}

func runWorkspaceRm(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := findWorkspace(cmd, rt, args[0])
	if err != nil {
		return err
	}
	if err := rt.svc.DeleteWorkspace(cmd.Context(), ws.ID); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	fmt.Printf("Deleted workspace %s: %s\n", ws.ID, ws.Name)
	return nil
}

func runWorkspaceUse(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ws, err := findWorkspace(cmd, rt, args[0])
	if err != nil {
		return err
	}
	if err := rt.svc.SetActiveWorkspace(cmd.Context(), ws.ID); err != nil {
		return fmt.Errorf("set active workspace: %w", err)
	}
	fmt.Printf("Active workspace is now %s\n", ws.Name)
	return nil
}

// findWorkspace resolves a workspace by ID first, then by exact name.
func findWorkspace(cmd *cobra.Command, rt *runtime, ref string) (domain.Workspace, error) {
	ref = strings.TrimSpace(ref)
	workspaces, err := rt.svc.ListWorkspaces(cmd.Context())
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("list workspaces: %w", err)
	}
	for _, ws := range workspaces {
		if ws.ID == ref {
			return ws, nil
		}
	}
	for _, ws := range workspaces {
		if strings.EqualFold(ws.Name, ref) {
			return ws, nil
		}
	}
	return domain.Workspace{}, fmt.Errorf("workspace %q not found", ref)
}

// currentWorkspace returns the workspace named by ref, or the active one when ref is empty.
func currentWorkspace(cmd *cobra.Command, rt *runtime, ref string) (domain.Workspace, error) {
	if strings.TrimSpace(ref) != "" {
		return findWorkspace(cmd, rt, ref)
	}
	ws, err := rt.svc.ActiveWorkspace(cmd.Context())
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("resolve active workspace: %w", err)
	}
	return ws, nil
}
