package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/checklist/internal/adapters/storage/sqlite"
	"github.com/evanschultz/checklist/internal/app"
	"github.com/evanschultz/checklist/internal/config"
	"github.com/evanschultz/checklist/internal/platform"
	"github.com/evanschultz/checklist/internal/tui"
	"github.com/spf13/cobra"
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

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree without fang styling.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if args == nil {
		args = []string{}
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand builds the command tree. The root command runs the TUI.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &rootOptions{
		appName: platform.DefaultAppName,
		devMode: version == "dev",
	}
	if envDev, ok := parseBoolEnv("CHECKLIST_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("CHECKLIST_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	cmd := &cobra.Command{
		Use:           "checklist",
		Short:         "A categorized checklist for the terminal",
		Long:          "Track items in colored categories, with per-category progress and bulk check/delete.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	cmd.AddCommand(newPathsCommand(opts))
	cmd.AddCommand(newExportCommand(opts, stderr))
	cmd.AddCommand(newImportCommand(opts, stderr))
	cmd.AddCommand(newListCommand(opts, stderr))
	cmd.AddCommand(newKeysCommand(opts, stderr))
	cmd.AddCommand(newPaletteCommand())
	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

// settings is the resolved path and config state for one invocation.
type settings struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// resolveSettings applies flags, env overrides and the config file.
func resolveSettings(opts *rootOptions) (settings, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return settings{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("CHECKLIST_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("CHECKLIST_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return settings{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return settings{paths: paths, configPath: configPath, cfg: cfg}, nil
}

// session bundles the open store, save writer and service for one command.
type session struct {
	settings
	logger *runtimeLogger
	store  *sqlite.Store
	writer *app.Writer
	svc    *app.Service
}

// openRuntime resolves settings, opens sqlite and loads both lists. When quiet
// is set the console sink is muted before anything is logged.
func openRuntime(ctx context.Context, opts *rootOptions, command string, stderr io.Writer, quiet bool) (*session, error) {
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, s.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if quiet {
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", s.configPath, "data_dir", s.paths.DataDir, "db_path", s.cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store, err := sqlite.Open(s.cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", s.cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	logger.Debug("sqlite store ready", "db_path", s.cfg.Database.Path)

	writer := app.NewWriter(store, logger)
	svc := app.NewService(writer, app.NewTimeID, nil, app.ServiceConfig{
		CategoriesKey: s.cfg.Storage.CategoriesKey,
		TodosKey:      s.cfg.Storage.TodosKey,
		Logger:        logger,
	})
	svc.Load(ctx, store)
	return &session{
		settings: s,
		logger:   logger,
		store:    store,
		writer:   writer,
		svc:      svc,
	}, nil
}

// Close drains pending saves, then closes the store and log sinks.
func (r *session) Close() error {
	var errs []error
	if err := r.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("sqlite close failed", "db_path", r.cfg.Database.Path, "err", err)
		errs = append(errs, fmt.Errorf("close sqlite store: %w", err))
	}
	if err := r.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}

// runTUI runs the interactive board until the user quits.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) (err error) {
	rt, err := openRuntime(ctx, opts, "tui", stderr, true)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	m := tui.NewModel(
		rt.svc,
		tui.WithKeyConfig(toKeyConfig(rt.cfg.Keys)),
		tui.WithShowHelp(rt.cfg.UI.ShowHelp),
	)
	rt.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		rt.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	rt.logger.Info("command flow complete", "command", "tui")
	return nil
}

// toKeyConfig maps configured key overrides into TUI options.
func toKeyConfig(keys config.KeyConfig) tui.KeyConfig {
	return tui.KeyConfig{
		AddTodo:         keys.AddTodo,
		NewCategory:     keys.NewCategory,
		CheckAll:        keys.CheckAll,
		DeleteCompleted: keys.DeleteCompleted,
	}
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
