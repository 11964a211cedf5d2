// Package main implements the backlog CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/adapters/storage/sqlite"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/app"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/config"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/platform"
	"github.com/ks982579/sullivansoftware-dot-dev/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "backlog",
	Short:        "Hierarchical todo manager with workspaces, quizzes, and an MCP server",
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	flagConfig string
	flagDB     string
	flagApp    string
	flagDev    bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive tree view (the default command)",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config TOML")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to sqlite database")
	rootCmd.PersistentFlags().StringVar(&flagApp, "app", "", "application name for config/data path resolution")
	rootCmd.PersistentFlags().BoolVar(&flagDev, "dev", false, "use dev mode paths (<app>-dev)")
}

// runtime bundles everything an invocation needs once flags and config resolve.
type runtime struct {
	cfg        config.Config
	paths      platform.Paths
	configPath string
	appName    string
	devMode    bool
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
}

// Close releases the runtime's repository handle and log sinks.
func (rt *runtime) Close() {
	if rt == nil {
		return
	}
	if rt.repo != nil {
		if err := rt.repo.Close(); err != nil {
			rt.logger.Warn("sqlite close failed", "db_path", rt.cfg.Database.Path, "err", err)
		}
	}
	if err := rt.logger.Close(); err != nil && rt.logger.shouldLogToSink(rt.logger.consoleSink) {
		fmt.Fprintf(os.Stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// newRuntime resolves paths and config, opens storage, and builds the service.
// consoleLogs is false when the TUI owns the terminal.
func newRuntime(cmd *cobra.Command, consoleLogs bool) (*runtime, error) {
	appName := strings.TrimSpace(flagApp)
	if appName == "" {
		appName = strings.TrimSpace(os.Getenv("BACKLOG_APP_NAME"))
	}
	if appName == "" {
		appName = "backlog"
	}

	devMode := version == "dev"
	if envDev, ok := parseBoolEnv("BACKLOG_DEV_MODE"); ok {
		devMode = envDev
	}
	if cmd.Flags().Changed("dev") {
		devMode = flagDev
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(flagConfig)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("BACKLOG_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(flagDB)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("BACKLOG_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(os.Stderr, appName, paths.DataDir, cfg.Log.Level, devMode, nil)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.SetConsoleEnabled(consoleLogs)
	logger.Debug("runtime paths resolved", "config_path", configPath, "db_path", cfg.Database.Path, "dev_mode", devMode)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(cfg.Database.Path, logger.StorageSink())
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		DefaultWorkspaceName: cfg.Workspace.DefaultName,
	})
	return &runtime{
		cfg:        cfg,
		paths:      paths,
		configPath: configPath,
		appName:    appName,
		devMode:    devMode,
		logger:     logger,
		repo:       repo,
		svc:        svc,
	}, nil
}

// runTUI launches the interactive tree view. Console logging stays muted so
// the alt-screen output is free of interleaved log lines.
func runTUI(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := tui.NewModel(
		rt.svc,
		tui.WithTreeFieldConfig(tui.TreeFieldConfig{
			ShowProgress: rt.cfg.Tree.ShowProgress,
			ShowKind:     true,
			IndentWidth:  rt.cfg.Tree.IndentWidth,
		}),
		tui.WithShowArchived(rt.cfg.Tree.ShowArchived),
	)
	if _, err := programFactory(m).Run(); err != nil {
		return fmt.Errorf("run tui program: %w", err)
	}
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
