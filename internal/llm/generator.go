// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"fmt"
	"strings"
)

// NotRunningAnswer is returned in place of an answer when the completions
// server does not respond to the model-list check.
const NotRunningAnswer = "LLM server is not running. Please start it with a model loaded."

// ErrorAnswerPrefix prefixes in-band failure answers.
const ErrorAnswerPrefix = "Error: "

// promptTemplate frames the retrieved context; the verbs are context then question.
const promptTemplate = `You are an expert documentation assistant. Use ONLY the information provided in the context below to answer the question.
Do not mention or reference any external links, file paths, documentation URLs, or redirect to other sources.
Provide a clear, concise explanation using the actual content from the context provided only.

Context:
%s

Question: %s

Answer:`

// BuildPrompt joins the context chunks with blank lines and frames them with
// the question.
func BuildPrompt(question string, chunks []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(chunks, "\n\n"), question)
}

// Completer is the part of Client the generator needs.
type Completer interface {
	CheckRunning(ctx context.Context) error
	Complete(ctx context.Context, prompt string) (*CompletionResponse, error)
}

// Generator answers questions from retrieved context. Failures never surface
// as errors: they are reported inside the answer text.
type Generator struct {
	client Completer
}

// NewGenerator creates a generator on top of client.
func NewGenerator(client Completer) *Generator {
	return &Generator{client: client}
}

// Ready reports whether the completions server is reachable.
func (g *Generator) Ready(ctx context.Context) error {
	return g.client.CheckRunning(ctx)
}

// Answer generates the answer to question from chunks.
func (g *Generator) Answer(ctx context.Context, question string, chunks []string) string {
	if err := g.client.CheckRunning(ctx); err != nil {
		return NotRunningAnswer
	}

	resp, err := g.client.Complete(ctx, BuildPrompt(question, chunks))
	if err != nil {
		return ErrorAnswerPrefix + err.Error()
	}
	return strings.TrimSpace(resp.Text())
}
