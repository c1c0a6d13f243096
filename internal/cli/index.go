// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat/internal/docs"
	"github.com/jeranaias/docchat/internal/ui/styles"
)

func newIndexCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the documentation index",
	}

	build := &cobra.Command{
		Use:   "build [file]",
		Short: "Rebuild the index from a plain-text documentation file",
		Long: `Rebuild the index from a plain-text documentation file.

The file is split into overlapping chunks (index.chunk_size runes with
index.chunk_overlap runes of overlap) that replace the current collection.
Without an argument index.source is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := opts.cfg.Index.Source
			if len(args) == 1 {
				source = args[0]
			}
			if source == "" {
				return fmt.Errorf("no documentation file given and index.source is not set")
			}

			idx, err := openIndex(opts)
			if err != nil {
				return err
			}
			defer idx.Close()

			start := time.Now()
			n, err := idx.Rebuild(cmd.Context(), source)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess(fmt.Sprintf("Indexed %d chunks from %s in %s",
				n, source, time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(opts)
			if err != nil {
				return err
			}
			defer idx.Close()
			printStats(cmd.OutOrStdout(), idx)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the chunks a question would retrieve",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(opts)
			if err != nil {
				return err
			}
			defer idx.Close()

			query := strings.Join(args, " ")
			chunks, err := idx.Search(cmd.Context(), query, opts.cfg.Server.TopK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(chunks) == 0 {
				fmt.Fprintln(out, infoStyle.Render("No matching chunks."))
				return nil
			}
			for i, c := range chunks {
				fmt.Fprintf(out, "%s %s\n%s\n\n",
					titleStyle.Render(fmt.Sprintf("#%d", i+1)),
					infoStyle.Render(fmt.Sprintf("chunk %d, score %.3f", c.Index, c.Rank)),
					c.Content)
			}
			return nil
		},
	}

	cmd.AddCommand(build, stats, search)
	return cmd
}

func openIndex(opts *globalOptions) (*docs.Index, error) {
	cfg := opts.cfg
	return docs.Open(cfg.DBPath(), docs.WithChunking(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap))
}

func printStats(out io.Writer, idx *docs.Index) {
	stats := idx.Stats()
	built := "never"
	if !stats.LastBuilt.IsZero() {
		built = stats.LastBuilt.Format(time.RFC3339)
	}
	source := stats.Source
	if source == "" {
		source = "-"
	}

	fmt.Fprintln(out, titleStyle.Render("Docs index"))
	fmt.Fprintln(out, labelStyle.Render("Database")+valueStyle.Render(idx.Path()))
	fmt.Fprintln(out, labelStyle.Render("Source")+valueStyle.Render(source))
	fmt.Fprintln(out, labelStyle.Render("Chunks")+valueStyle.Render(fmt.Sprint(stats.Chunks)))
	fmt.Fprintln(out, labelStyle.Render("Last built")+valueStyle.Render(built))
}
