// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm provides the HTTP client for an OpenAI-compatible completions
// server (LM Studio by default) and the answer generator built on it.
//
// # Key Types
//
//   - Client: completions and model-list calls
//   - Generator: builds the retrieval prompt and turns failures into
//     in-band answers
//
// # Usage
//
//	client := llm.NewClient(cfg.LLM)
//	gen := llm.NewGenerator(client)
//	answer := gen.Answer(ctx, question, chunks)
package llm
