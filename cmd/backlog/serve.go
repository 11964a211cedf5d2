package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/adapters/server"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and MCP endpoint over HTTP",
	RunE:  runServe,
}

var serveBind string

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print resolved config and data paths",
	RunE:  runPaths,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all workspaces, todos, and quizzes as a JSON snapshot",
	RunE:  runExport,
}

var exportOut string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a snapshot, replacing the current store",
	RunE:  runImport,
}

var importIn string

func init() {
	rootCmd.AddCommand(serveCmd, pathsCmd, exportCmd, importCmd)

	serveCmd.Flags().StringVar(&serveBind, "bind", "", "Bind address (overrides server.http_bind)")
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "Output file path ('-' for stdout)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input snapshot JSON file")
	_ = importCmd.MarkFlagRequired("in")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	bind := rt.cfg.Server.HTTPBind
	if serveBind != "" {
		bind = serveBind
	}
	serverCfg := server.Config{
		HTTPBind:      bind,
		APIEndpoint:   rt.cfg.Server.APIEndpoint,
		MCPEndpoint:   rt.cfg.Server.MCPEndpoint,
		ServerName:    rt.appName,
		ServerVersion: version,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("serving http", "bind", bind, "api", serverCfg.APIEndpoint, "mcp", serverCfg.MCPEndpoint)
	if err := server.Run(ctx, serverCfg, rt.svc); err != nil {
		rt.logger.Error("server stopped", "err", err)
		return err
	}
	rt.logger.Info("server shut down")
	return nil
}

func runPaths(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Printf("app: %s\n", rt.appName)
	fmt.Printf("dev_mode: %t\n", rt.devMode)
	fmt.Printf("config: %s\n", rt.configPath)
	fmt.Printf("data_dir: %s\n", rt.paths.DataDir)
	fmt.Printf("db: %s\n", rt.cfg.Database.Path)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.svc.ExportSnapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if exportOut == "-" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(exportOut), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(exportOut, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	content, err := os.ReadFile(importIn)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := rt.svc.ImportSnapshot(cmd.Context(), snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	fmt.Println("Import complete.")
	return nil
}
