package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Tree      TreeConfig      `toml:"tree"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type WorkspaceConfig struct {
	DefaultName string `toml:"default_name"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
}

type TreeConfig struct {
	ShowProgress  bool `toml:"show_progress"`
	ShowArchived  bool `toml:"show_archived"`
	IndentWidth   int  `toml:"indent_width"`
	CollapseEpics bool `toml:"collapse_epics"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Workspace: WorkspaceConfig{
			DefaultName: "Personal",
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8787",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Log: LogConfig{
			Level: "info",
		},
		Tree: TreeConfig{
			ShowProgress:  true,
			ShowArchived:  false,
			IndentWidth:   2,
			CollapseEpics: false,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if strings.TrimSpace(c.Workspace.DefaultName) == "" {
		return errors.New("workspace.default_name is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	if !strings.HasPrefix(c.Server.APIEndpoint, "/") {
		return fmt.Errorf("server.api_endpoint must start with /: %q", c.Server.APIEndpoint)
	}
	if !strings.HasPrefix(c.Server.MCPEndpoint, "/") {
		return fmt.Errorf("server.mcp_endpoint must start with /: %q", c.Server.MCPEndpoint)
	}

	if c.Tree.IndentWidth < 1 || c.Tree.IndentWidth > 8 {
		return fmt.Errorf("tree.indent_width must be between 1 and 8, got %d", c.Tree.IndentWidth)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
