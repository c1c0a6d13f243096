// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat/internal/render"
	"github.com/jeranaias/docchat/internal/session"
	"github.com/jeranaias/docchat/internal/transport"
)

// maxStdinQuestion caps a question read from a pipe.
const maxStdinQuestion = 64 * 1024

func newAskCommand(opts *globalOptions) *cobra.Command {
	var (
		raw     bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask one question and print the answer",
		Long: `Ask one question and print the answer.

The question is taken from the arguments, or from stdin when it is piped.
Markdown is rendered when stdout is a terminal; use --raw to disable it.`,
		Example: `  docchat ask "How do I schedule a workflow?"
  echo "What is a webhook node?" | docchat ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" && !IsTTY() {
				data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinQuestion))
				if err != nil {
					return fmt.Errorf("read question: %w", err)
				}
				question = string(data)
			}
			if strings.TrimSpace(question) == "" {
				return errors.New("no question given")
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			client := transport.NewClient(opts.cfg.Client.BaseURL)
			pretty := !raw && IsStdoutTTY()
			return runAsk(ctx, client, question, cmd.OutOrStdout(), cmd.ErrOrStderr(), pretty)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (e.g. 30s)")
	return cmd
}

// runAsk performs one exchange. A failure is printed the way the chat shows
// it and turns into exit status 1.
func runAsk(ctx context.Context, sender session.Sender, question string, out, errOut io.Writer, pretty bool) error {
	answer, err := session.Send(ctx, sender, strings.TrimSpace(question))
	if err != nil {
		var pe *session.PanicError
		if errors.As(err, &pe) {
			fmt.Fprintln(errOut, errorStyle.Render(session.UnexpectedErrorText))
		} else {
			fmt.Fprintln(errOut, errorStyle.Render(session.FailureText(err)))
		}
		return &silentError{code: 1}
	}

	answer = render.Sanitize(answer)
	if pretty {
		fmt.Fprint(out, renderMarkdown(answer, GetTerminalWidth()))
		return nil
	}
	fmt.Fprintln(out, answer)
	return nil
}

// renderMarkdown renders content for the terminal, or returns it unchanged
// when rendering fails.
func renderMarkdown(content string, width int) string {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return content + "\n"
	}
	rendered, err := md.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
