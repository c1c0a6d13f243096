// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/export"
	"github.com/jeranaias/docchat/internal/logging"
	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/render"
	"github.com/jeranaias/docchat/internal/session"
	"github.com/jeranaias/docchat/internal/transport"
	"github.com/jeranaias/docchat/internal/ui/styles"
)

func newChatCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-based chat session",
		Long: `Start an interactive line-based chat with history.

Interactive commands:
  /help              Show available commands
  /clear             Clear the conversation (asks first)
  /export [format]   Save the transcript (html, md or json)
  /quit              Exit chat
  Ctrl+D             Exit chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides line editing and persistent history.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// ReadInput reads a line; non-blank input is added to history.
func (r *lineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with 0600 permissions and restores the terminal.
func (r *lineReader) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// chatREPL is the line-based frontend over the session controller.
type chatREPL struct {
	ctrl     *session.Controller
	sender   session.Sender
	cfg      *config.Config
	out      io.Writer
	confirm  func(prompt string) bool
	renderer *render.Renderer
}

func newChatREPL(ctrl *session.Controller, sender session.Sender, cfg *config.Config, out io.Writer, confirm func(string) bool) *chatREPL {
	r := &chatREPL{
		ctrl:    ctrl,
		sender:  sender,
		cfg:     cfg,
		out:     out,
		confirm: confirm,
	}
	if IsStdoutTTY() && out == os.Stdout {
		r.renderer = render.NewRenderer(
			render.WithWidth(GetTerminalWidth()),
			render.WithLocale(model.Locale(cfg.UI.Locale)),
		)
	}
	ctrl.OnAppend(r.print)
	return r
}

// print shows appended messages. The user's own input is already on screen.
func (r *chatREPL) print(msg model.Message) {
	if msg.Role == model.RoleUser {
		return
	}
	if r.renderer != nil {
		fmt.Fprintln(r.out, r.renderer.Render(msg))
		fmt.Fprintln(r.out)
		return
	}

	label := model.Avatar(msg.Role) + " " + msg.Role.DisplayName()
	if msg.Error {
		fmt.Fprintf(r.out, "%s\n%s\n\n", label, errorStyle.Render(render.Sanitize(msg.Content)))
		return
	}
	fmt.Fprintf(r.out, "%s\n%s\n\n", label, render.Sanitize(msg.Content))
}

// handleLine processes one input line. It reports whether the session ends.
func (r *chatREPL) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "/") {
		return r.handleSlashCommand(trimmed)
	}

	fmt.Fprintln(r.out, infoStyle.Render("Assistant is typing..."))
	err := r.ctrl.Submit(ctx, r.sender, line)
	if err != nil && !errors.Is(err, session.ErrEmptyInput) {
		fmt.Fprintln(r.out, styles.RenderWarning(err.Error()))
	}
	return false
}

func (r *chatREPL) handleSlashCommand(input string) bool {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		r.printHelp()

	case "/clear", "/c":
		if !r.ctrl.Clear(func() bool { return r.confirm(session.ClearPrompt + " [y/N] ") }) {
			fmt.Fprintln(r.out, styles.RenderInfo("Conversation kept."))
		}

	case "/export":
		format := r.cfg.Export.Format
		if len(fields) > 1 {
			format = fields[1]
		}
		path, err := r.export(format)
		if err != nil {
			fmt.Fprintln(r.out, styles.RenderError("Export failed: "+err.Error()))
			break
		}
		fmt.Fprintln(r.out, styles.RenderSuccess("Exported to "+path))

	default:
		fmt.Fprintln(r.out, styles.RenderWarning("Unknown command: "+fields[0])+infoStyle.Render(" (type /help)"))
	}
	return false
}

func (r *chatREPL) export(format string) (string, error) {
	opts := export.DefaultOptions()
	opts.OutputDir = r.cfg.ExportDir()
	opts.Locale = model.Locale(r.cfg.UI.Locale)

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return "", err
	}
	return export.ExportToFile(r.ctrl.Conversation(), exporter, opts)
}

func (r *chatREPL) printHelp() {
	fmt.Fprintln(r.out, titleStyle.Render("Commands"))
	for _, row := range [][2]string{
		{"/help", "Show this help"},
		{"/clear", "Clear the conversation"},
		{"/export [format]", "Save the transcript (html, md, json)"},
		{"/quit", "Exit chat"},
	} {
		fmt.Fprintln(r.out, "  "+promptStyle.Render(fmt.Sprintf("%-18s", row[0]))+infoStyle.Render(row[1]))
	}
	fmt.Fprintln(r.out)
}

// =============================================================================
// COMMAND
// =============================================================================

func runChat(ctx context.Context, opts *globalOptions, out io.Writer) error {
	cfg := opts.cfg
	logger, closer, err := opts.newLogger(true)
	if err != nil {
		return err
	}
	defer closer.Close()

	client := transport.NewClient(cfg.Client.BaseURL,
		transport.WithLogger(logging.Component(logger, "transport")))
	ctrl := session.NewController(session.WithLogger(logging.Component(logger, "session")))

	reader := newLineReader()
	defer reader.Close()

	confirm := func(prompt string) bool {
		answer, err := reader.ReadInput(prompt)
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
	repl := newChatREPL(ctrl, client, cfg, out, confirm)

	fmt.Fprintln(out, titleStyle.Render("docchat")+infoStyle.Render("  "+client.BaseURL()))
	fmt.Fprintln(out, infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Fprintln(out)
	if cfg.UI.ShowWelcome {
		welcome := cfg.UI.Welcome
		if welcome == "" {
			welcome = session.DefaultWelcome
		}
		ctrl.Greet(welcome)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := reader.ReadInput("You: ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if repl.handleLine(ctx, line) {
			return nil
		}
	}
}
