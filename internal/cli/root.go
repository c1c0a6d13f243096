// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/logging"
	"github.com/jeranaias/docchat/internal/offline"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// silentError carries an exit status for a failure the command already
// reported.
type silentError struct {
	code int
}

func (e *silentError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// globalOptions holds the persistent flags and the config they resolve to.
type globalOptions struct {
	configPath string
	baseURL    string
	logLevel   string

	cfg *config.Config
}

// load reads the configuration and applies flag overrides.
func (o *globalOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	o.cfg = cfg
	config.SetGlobal(cfg)
	return nil
}

// applyFlags puts flag values over cfg. Reloaded configs go through it too.
func (o *globalOptions) applyFlags(cfg *config.Config) {
	if o.baseURL != "" {
		cfg.Client.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
}

// newLogger builds the command logger. File-backed logging keeps stderr free
// for full-screen programs.
func (o *globalOptions) newLogger(toFile bool) (zerolog.Logger, io.Closer, error) {
	opts := logging.Options{
		Level:   o.cfg.Log.Level,
		NoColor: !ColorsEnabled(),
	}
	if toFile {
		opts.File = o.cfg.LogFile()
	}
	return logging.New(opts)
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the docchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documentation from the terminal",
		Long: `docchat is a terminal chat client for a documentation Q&A service.

Run without a command to open the full-screen chat. The "serve" command runs
the backend: it answers POST /chat from a local full-text docs index and an
OpenAI-compatible completions server.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.baseURL != "" {
				if err := offline.ValidateBaseURL(opts.baseURL); err != nil {
					return fmt.Errorf("--base-url: %w", err)
				}
			}
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is ~/.docchat/config.toml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "chat API base URL (overrides client.base_url)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		newTUICommand(opts),
		newChatCommand(opts),
		newAskCommand(opts),
		newServeCommand(opts),
		newIndexCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var silent *silentError
	if errors.As(err, &silent) {
		return silent.code
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error:")+" "+err.Error())
	return 1
}
