package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ptysh/internal/completion"
	"github.com/GriffinCanCode/ptysh/internal/dispatch"
	"github.com/GriffinCanCode/ptysh/internal/environ"
	"github.com/GriffinCanCode/ptysh/internal/infrastructure/config"
	"github.com/GriffinCanCode/ptysh/internal/keys"
	"github.com/GriffinCanCode/ptysh/internal/logging"
	"github.com/GriffinCanCode/ptysh/internal/ptybridge"
	"github.com/GriffinCanCode/ptysh/internal/shell"
	"github.com/GriffinCanCode/ptysh/internal/terminal"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ptysh: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logFile    string
	logLevel   string
	dev        bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:           "ptysh",
		Short:         "Interactive shell with tab completion and PTY-backed commands",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	root.Flags().StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml or .yml)")
	root.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&opts.dev, "dev", false, "development logging")

	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ptysh %s\n", version)
			return err
		},
	}
}

// loadConfig layers flags over the file and environment configuration.
func loadConfig(cmd *cobra.Command, opts rootOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv("PTYSH_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = opts.dev
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig(cfg.File)
	if cfg.Development {
		logCfg = logging.DevelopmentConfig(cfg.File)
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	return logging.New(logCfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	term := terminal.New(os.Stdin, os.Stdout, cfg.Bridge.DefaultCols, cfg.Bridge.DefaultRows)
	if !term.IsTerminal() {
		return fmt.Errorf("%w: standard input is not a terminal", terminal.ErrTerminal)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	var (
		fsys = afero.NewOsFs()
		env  = environ.OS{}
		wd   = environ.NewWorkdir(cwd)
	)

	bridge := ptybridge.New(term, ptybridge.Config{
		BufferSize:   cfg.Bridge.BufferSize,
		PollInterval: cfg.Bridge.PollInterval,
		Term:         cfg.Bridge.Term,
	}, logger.Component("ptybridge"))
	decoder := keys.NewDecoder(term.In())
	bridge.SetTypeahead(decoder)

	sh := shell.New(shell.Config{
		Screen:     term,
		Keys:       decoder,
		Out:        term.Out(),
		Completer:  completion.New(fsys, env, wd, cfg.Completion.ColumnPadding),
		Dispatcher: dispatch.New(fsys, env, wd, bridge, term.Out(), logger.Component("dispatch")),
		Env:        env,
		Workdir:    wd,
		Prompt:     cfg.Shell.Prompt,
		QuitWords:  cfg.Shell.QuitWords,
		Width:      cfg.Completion.DefaultWidth,
		Logger:     logger.Component("shell"),
	})

	logger.Info("Starting ptysh",
		zap.String("version", version),
		zap.String("dir", cwd))
	return sh.Run(ctx)
}
