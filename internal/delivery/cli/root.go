// Package cli implements civicctl, the operator command line for seeding
// demo data and running the analytics passes outside the HTTP server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/app"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/config"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags
type RootOptions struct {
	LogLevel     string
	OutputFormat string
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Timeout      time.Duration

	build func(context.Context, *config.Config, logging.Logger) (*app.Dependencies, error)
}

// Dependencies connects to the configured backends
func (c *CLIContext) Dependencies(ctx context.Context) (*app.Dependencies, error) {
	return c.build(ctx, c.Config, c.Logger)
}

// NewRootCommand creates the root command with global flags and subcommands
func NewRootCommand() *cobra.Command {
	return newRootCommand(app.Build)
}

func newRootCommand(build func(context.Context, *config.Config, logging.Logger) (*app.Dependencies, error)) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "civicctl",
		Short:   "civicctl seeds and analyzes civic issue data",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, build)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "json", "output format (json, text)")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "overall command timeout")

	cmd.AddCommand(
		newSeedCmd(),
		newAnalyzeCmd(),
		newClassifyCmd(),
		newSuggestCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, build func(context.Context, *config.Config, logging.Logger) (*app.Dependencies, error)) error {
	if opts.OutputFormat != "json" && opts.OutputFormat != "text" {
		return fmt.Errorf("unsupported output format %q", opts.OutputFormat)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger.Named("civicctl"),
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
		build:        build,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext extracts the CLIContext stored by the root command
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	cliCtx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("cli context not initialized")
	}
	return cliCtx, nil
}

// withDependencies runs fn with connected dependencies and releases them after
func withDependencies(cmd *cobra.Command, fn func(ctx context.Context, cliCtx *CLIContext, deps *app.Dependencies) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	deps, err := cliCtx.Dependencies(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			cliCtx.Logger.Warn("failed to release resources", logging.Err(err))
		}
		_ = cliCtx.Logger.Sync()
	}()

	return fn(ctx, cliCtx, deps)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
