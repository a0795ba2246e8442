package main

import (
	"fmt"
	"strings"

	"github.com/hylla/cardflow/internal/adapters/console"
	"github.com/hylla/cardflow/internal/adapters/storage/sqlite"
	"github.com/hylla/cardflow/internal/app"
	"github.com/hylla/cardflow/internal/config"
	"github.com/hylla/cardflow/internal/platform"
	"github.com/spf13/cobra"
)

// skipRuntimeAnnotation marks commands that must not open the database.
const skipRuntimeAnnotation = "cardflow/skip-runtime"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// cli owns the command tree and the runtime it lazily opens.
type cli struct {
	io    streams
	flags globalFlags

	paths  platform.Resolution
	cfg    config.Config
	logger *runtimeLogger
	repo   *sqlite.Repository
	svc    *app.Service
	render *console.Renderer
}

func newCLI(io streams) *cli {
	return &cli{io: io}
}

// command builds the root command and its subcommands.
func (c *cli) command() *cobra.Command {
	appName := "cardflow"
	if envApp := strings.TrimSpace(c.io.getenv("CARDFLOW_APP_NAME")); envApp != "" {
		appName = envApp
	}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv(c.io.getenv, "CARDFLOW_DEV_MODE"); ok {
		defaultDevMode = envDev
	}

	root := &cobra.Command{
		Use:   "cardflow",
		Short: "Move kanban cards through board columns",
		Long: `cardflow keeps cards moving through the ordered columns of a board.

Cards start in the initial column, advance one column at a time, can be
blocked and unblocked with a reason, and can be cancelled from any live column.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: c.prepare,
		RunE: c.logged("menu", func(cmd *cobra.Command) error {
			return c.runMenu(cmd, 0)
		}),
	}
	root.SetIn(c.io.stdin)
	root.SetOut(c.io.stdout)
	root.SetErr(c.io.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.flags.configPath, "config", "", "path to config TOML (env "+platform.EnvConfigPath+")")
	flags.StringVar(&c.flags.dbPath, "db", "", "path to sqlite database (env "+platform.EnvDBPath+")")
	flags.StringVar(&c.flags.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&c.flags.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		c.pathsCommand(),
		c.boardsCommand(),
		c.boardCommand(),
		c.columnCommand(),
		c.cardCommand(),
		c.menuCommand(),
	)
	return root
}

// prepare resolves paths and, unless the command opts out, opens the runtime.
func (c *cli) prepare(cmd *cobra.Command, _ []string) error {
	defaults, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.flags.appName,
		DevMode: c.flags.devMode,
		Getenv:  c.io.getenv,
	})
	if err != nil {
		return err
	}
	c.paths = platform.Resolve(defaults, platform.Overrides{
		ConfigPath: c.flags.configPath,
		DBPath:     c.flags.dbPath,
	}, c.io.getenv)

	if cmd.Annotations[skipRuntimeAnnotation] == "true" {
		return nil
	}
	return c.open(cmd)
}

// open loads config, starts logging, opens storage, and provisions boards.
func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.paths.ConfigPath, config.Default(c.paths.DBPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", c.paths.ConfigPath, err)
	}
	if c.paths.DBOverridden {
		cfg.Database.Path = c.paths.DBPath
	}
	c.cfg = cfg

	logger, err := newRuntimeLogger(c.io.stderr, c.flags.appName, c.flags.devMode, cfg.Logging, c.io.now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	c.logger = logger
	logger.Debug("startup configuration resolved", "app", c.flags.appName, "dev_mode", c.flags.devMode, "command", cmd.CommandPath())
	logger.Debug("configuration loaded", "config_path", c.paths.ConfigPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}

	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	c.repo = repo
	logger.Debug("sqlite repository ready", "db_path", cfg.Database.Path)

	c.svc = app.NewService(repo, nil, c.io.now)
	boards, err := c.svc.EnsureBoards(cmd.Context(), boardTemplates(cfg.Boards))
	if err != nil {
		logger.Error("board provisioning failed", "err", err)
		return fmt.Errorf("provision boards: %w", err)
	}
	logger.Debug("boards provisioned", "count", len(boards))

	c.render = console.NewRenderer(c.io.stdout, console.Options{
		Styled:        isTerminal(c.io.stdout) && c.io.getenv("NO_COLOR") == "",
		Markdown:      cfg.Render.Markdown,
		WrapWidth:     cfg.Render.WrapWidth,
		MarkdownStyle: cfg.Render.MarkdownStyle,
	})
	return nil
}

// close releases storage and the dev log file.
func (c *cli) close() {
	if c.repo != nil {
		if err := c.repo.Close(); err != nil {
			c.logger.Warn("sqlite close failed", "db_path", c.cfg.Database.Path, "err", err)
		}
		c.repo = nil
	}
	if err := c.logger.Close(); err != nil {
		_, _ = fmt.Fprintf(c.io.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// logged wraps a command body with start/complete/failure log events.
func (c *cli) logged(name string, fn func(*cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c.logger.Info("command flow start", "command", name)
		if err := fn(cmd); err != nil {
			if app.IsFatal(err) {
				c.logger.Error("command flow failed", "command", name, "err", err)
			} else {
				c.logger.Warn("command flow rejected", "command", name, "err", err)
			}
			return err
		}
		c.logger.Info("command flow complete", "command", name)
		return nil
	}
}

// boardTemplates converts configured boards to provisioning templates.
func boardTemplates(boards []config.BoardConfig) []app.BoardTemplate {
	out := make([]app.BoardTemplate, 0, len(boards))
	for _, board := range boards {
		out = append(out, app.BoardTemplate{
			Name:    board.Name,
			Initial: board.Initial,
			Pending: board.Pending,
			Final:   board.Final,
			Cancel:  board.Cancel,
		})
	}
	return out
}
