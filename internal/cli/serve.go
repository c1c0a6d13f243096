// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat/internal/docs"
	"github.com/jeranaias/docchat/internal/llm"
	"github.com/jeranaias/docchat/internal/logging"
	"github.com/jeranaias/docchat/internal/server"
)

type serveOptions struct {
	addr    string
	source  string
	rebuild bool
	watch   bool
	debug   bool
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the docs chat API",
		Long: `Run the docs chat API.

GET /        liveness message
GET /health  index and completions server status
POST /chat   {"question": "..."} -> {"answer": "..."}

The docs index is built from --source (or index.source) when it is empty
or when --rebuild is given. --watch rebuilds it whenever the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, so)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&so.addr, "addr", "", "listen address (overrides server.addr)")
	flags.StringVar(&so.source, "source", "", "documentation text file (overrides index.source)")
	flags.BoolVar(&so.rebuild, "rebuild", false, "rebuild the index before serving")
	flags.BoolVar(&so.watch, "watch", false, "rebuild the index when the source changes")
	flags.BoolVar(&so.debug, "debug", false, "run gin in debug mode")
	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, so *serveOptions) error {
	cfg := opts.cfg
	if so.addr != "" {
		cfg.Server.Addr = so.addr
	}
	source := cfg.Index.Source
	if so.source != "" {
		source = so.source
	}

	logger, closer, err := opts.newLogger(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	if !so.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	idx, err := docs.Open(cfg.DBPath(),
		docs.WithChunking(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap),
		docs.WithLogger(logging.Component(logger, "docs")))
	if err != nil {
		return fmt.Errorf("open docs index: %w", err)
	}
	defer idx.Close()

	if source != "" && (so.rebuild || idx.Count() == 0) {
		n, err := idx.Rebuild(ctx, source)
		if err != nil {
			return fmt.Errorf("build docs index: %w", err)
		}
		logger.Info().Int("chunks", n).Str("source", source).Msg("docs index built")
	}
	if idx.Count() == 0 {
		logger.Warn().Msg("docs index is empty; every question will get the no-results answer")
	}

	if (so.watch || cfg.Index.Watch) && source != "" {
		w, err := idx.Watch(source, 0, func(n int, err error) {
			if err == nil {
				logger.Info().Int("chunks", n).Msg("docs index rebuilt")
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("docs watch disabled")
		} else {
			defer w.Close()
		}
	}

	client := llm.NewClient(cfg.LLM, llm.WithLogger(logging.Component(logger, "llm")))
	generator := llm.NewGenerator(client)
	if err := generator.Ready(ctx); err != nil {
		logger.Warn().Err(err).Str("url", cfg.LLM.URL).Msg("completions server not reachable yet")
	}

	srv := server.New(cfg.Server, idx, generator,
		server.WithLogger(logging.Component(logger, "server")))
	return srv.Run(ctx)
}
