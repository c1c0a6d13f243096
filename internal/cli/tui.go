// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/logging"
	"github.com/jeranaias/docchat/internal/offline"
	"github.com/jeranaias/docchat/internal/transport"
	"github.com/jeranaias/docchat/internal/ui/chat"
)

func newTUICommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
}

// runTUI runs the Bubble Tea chat until the user quits or ctx ends.
func runTUI(ctx context.Context, opts *globalOptions) error {
	cfg := opts.cfg
	logger, closer, err := opts.newLogger(true)
	if err != nil {
		return err
	}
	defer closer.Close()

	client := transport.NewClient(cfg.Client.BaseURL,
		transport.WithLogger(logging.Component(logger, "transport")))

	model := chat.New(client,
		chat.WithConfig(cfg),
		chat.WithLogger(logging.Component(logger, "ui")))

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.MouseWheel {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, programOpts...)

	// Connectivity monitor
	var monitor *offline.Monitor
	if cfg.Connectivity.Enabled {
		monitor = startMonitor(ctx, cfg, p, logger)
		if monitor != nil {
			defer monitor.Stop()
		}
	}

	// Config hot reload. Callbacks run on the watcher goroutine only.
	baseURL := cfg.Client.BaseURL
	onReload := func(next *config.Config) {
		opts.applyFlags(next)
		if monitor != nil && next.Client.BaseURL != baseURL {
			if prober, err := newProber(next); err == nil {
				monitor.SetProber(prober)
			}
		}
		baseURL = next.Client.BaseURL
		p.Send(chat.ConfigReloadedMsg{Config: next})
	}
	watcher, err := config.Watch(opts.configPath, onReload, nil, logging.Component(logger, "config"))
	if err != nil {
		logger.Warn().Err(err).Msg("config hot reload disabled")
	} else {
		defer watcher.Close()
	}

	logger.Info().Str("base_url", cfg.Client.BaseURL).Msg("chat started")
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newProber(cfg *config.Config) (*offline.DialProber, error) {
	timeout := time.Duration(cfg.Connectivity.TimeoutSecs) * time.Second
	return offline.NewDialProber(cfg.Client.BaseURL, timeout)
}

func startMonitor(ctx context.Context, cfg *config.Config, p *tea.Program, logger zerolog.Logger) *offline.Monitor {
	prober, err := newProber(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("connectivity monitor disabled")
		return nil
	}

	interval := time.Duration(cfg.Connectivity.IntervalSecs) * time.Second
	monitor := offline.NewMonitor(prober, interval, func(status offline.Status) {
		p.Send(chat.ConnectivityMsg{Status: status})
	}, offline.WithLogger(logging.Component(logger, "offline")))
	monitor.Start(ctx)
	return monitor
}
