package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Render   RenderConfig   `toml:"render"`
	Boards   []BoardConfig  `toml:"boards"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"` // debug | info | warn | error | fatal
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type RenderConfig struct {
	Markdown      bool   `toml:"markdown"`
	MarkdownStyle string `toml:"markdown_style"` // auto | ascii | dark | dracula | light | notty | pink | tokyo-night
	WrapWidth     int    `toml:"wrap_width"`
}

// BoardConfig is one board provisioned at startup.
type BoardConfig struct {
	Name    string   `toml:"name"`
	Initial string   `toml:"initial"`
	Pending []string `toml:"pending"`
	Final   string   `toml:"final"`
	Cancel  string   `toml:"cancel"`
}

var logLevels = []string{"debug", "info", "warn", "error", "fatal"}

var markdownStyles = []string{"auto", "ascii", "dark", "dracula", "light", "notty", "pink", "tokyo-night"}

func defaultBoards() []BoardConfig {
	return []BoardConfig{
		{
			Name:    "Main",
			Initial: "To Do",
			Pending: []string{"In Progress"},
			Final:   "Done",
			Cancel:  "Cancelled",
		},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".cardflow/log",
			},
		},
		Render: RenderConfig{
			Markdown:      true,
			MarkdownStyle: "dark",
			WrapWidth:     80,
		},
		Boards: defaultBoards(),
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

	// A [[boards]] table in the file replaces the default board list.
	cfg.Boards = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.Boards == nil {
		cfg.Boards = defaults.Boards
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

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level != "" && !slices.Contains(logLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}
	style := strings.TrimSpace(strings.ToLower(c.Render.MarkdownStyle))
	if style != "" && !slices.Contains(markdownStyles, style) {
		return fmt.Errorf("invalid render.markdown_style: %q", c.Render.MarkdownStyle)
	}
	if c.Render.WrapWidth < 0 {
		return fmt.Errorf("render.wrap_width must be >= 0, got %d", c.Render.WrapWidth)
	}

	if len(c.Boards) == 0 {
		return errors.New("boards must include at least one board")
	}
	seenBoard := map[string]struct{}{}
	for idx, board := range c.Boards {
		name := strings.TrimSpace(board.Name)
		if name == "" {
			return fmt.Errorf("boards[%d].name is required", idx)
		}
		key := strings.ToLower(name)
		if _, ok := seenBoard[key]; ok {
			return fmt.Errorf("boards[%d].name is duplicated: %s", idx, name)
		}
		seenBoard[key] = struct{}{}

		if strings.TrimSpace(board.Initial) == "" {
			return fmt.Errorf("boards[%d].initial is required", idx)
		}
		if strings.TrimSpace(board.Final) == "" {
			return fmt.Errorf("boards[%d].final is required", idx)
		}
		if strings.TrimSpace(board.Cancel) == "" {
			return fmt.Errorf("boards[%d].cancel is required", idx)
		}
		for pendingIdx, pending := range board.Pending {
			if strings.TrimSpace(pending) == "" {
				return fmt.Errorf("boards[%d].pending[%d] is empty", idx, pendingIdx)
			}
		}
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
