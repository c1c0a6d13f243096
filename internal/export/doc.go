// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the current conversation to a file.
//
// # Supported Formats
//
//   - HTML: standalone page built from render.HTMLRenderer blocks
//   - Markdown: YAML frontmatter plus one section per message
//   - JSON: the raw messages with ids and timestamps
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.OutputDir = cfg.ExportDir()
//	exp, err := export.ForFormat("html", opts)
//	path, err := export.ExportToFile(conv, exp, opts)
//
// Exports are a user action only; nothing written here is read back.
package export
