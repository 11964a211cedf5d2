package tui

// TreeFieldConfig controls which decorations tree rows carry.
type TreeFieldConfig struct {
	ShowProgress bool
	ShowKind     bool
	IndentWidth  int
}

type Option func(*Model)

func DefaultTreeFieldConfig() TreeFieldConfig {
	return TreeFieldConfig{
		ShowProgress: true,
		ShowKind:     true,
		IndentWidth:  2,
	}
}

func WithTreeFieldConfig(cfg TreeFieldConfig) Option {
	return func(m *Model) {
		if cfg.IndentWidth < 1 || cfg.IndentWidth > 8 {
			cfg.IndentWidth = 2
		}
		m.treeFields = cfg
	}
}

func WithShowArchived(show bool) Option {
	return func(m *Model) {
		m.showArchived = show
	}
}
