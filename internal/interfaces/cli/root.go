package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/lexclock/internal/bootstrap"
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationServer marks long-running commands, which log at the configured
// level instead of the quiet CLI default.
const annotationServer = "server"

// cliLogLevel is the log level of one-shot commands when --log-level is unset.
const cliLogLevel = "warn"

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	Platform     *bootstrap.Platform
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// PlatformFactory builds the runtime once flags and configuration are known.
type PlatformFactory func(cfg *config.Config, logger logging.Logger) (*bootstrap.Platform, error)

func defaultPlatformFactory(cfg *config.Config, logger logging.Logger) (*bootstrap.Platform, error) {
	return bootstrap.New(cfg, logger, bootstrap.WithVersion(Version))
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultPlatformFactory)
}

func newRootCommand(factory PlatformFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lexclock",
		Short: "Statutory deadline calculator",
		Long: `lexclock computes court and statutory deadlines from a trigger date.

Deadlines count calendar days, business days or months, and roll forward past
weekends and court holidays.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./lexclock.yaml if present)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")

	cmd.AddCommand(
		newComputeCmd(),
		newAddCmd(),
		newStatusCmd(),
		newRulesCmd(),
		newHolidaysCmd(),
		newDayCmd(),
		newWarmCmd(),
		newServeCmd(),
	)
	return cmd
}

// persistentPreRun loads config, builds the logger and platform, then stores
// the CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory PlatformFactory) error {
	switch opts.OutputFormat {
	case "text", "json", "table":
	default:
		return errors.InvalidParam("invalid output format").WithDetailf("%q (must be text, json or table)", opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	path, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(cmd, cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	platform, err := factory(cfg, logger)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger,
		Platform:     platform,
		OutputFormat: opts.OutputFormat,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	_ = cliCtx.Logger.Sync()
	return cliCtx.Platform.Close()
}

// resolveConfigPath returns the explicit path, or the first default location
// that exists, or "" to configure from the environment alone.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	searchPaths := []string{"./lexclock.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".lexclock", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/lexclock/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// initLogger builds the process logger. One-shot commands log to stderr in
// console format so stdout carries only results.
func initLogger(cmd *cobra.Command, cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	if cmd.Annotations[annotationServer] == "true" {
		logCfg := cfg.Log
		if opts.LogLevel != "" {
			logCfg.Level = opts.LogLevel
		}
		return logging.NewLogger(logCfg)
	}

	level := cliLogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext returns the command's context bounded by --timeout.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}
