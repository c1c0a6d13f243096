// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docs provides the documentation index the backend retrieves from.
//
// A plain-text documentation file is split into overlapping chunks which are
// stored in SQLite with an FTS5 table. Retrieval ranks chunks with bm25.
//
// # Usage
//
//	idx, err := docs.Open(cfg.DBPath())
//	n, err := idx.Rebuild(ctx, "docs.txt")
//	chunks, err := idx.Search(ctx, "how do webhooks work", 5)
//
// The index is rebuilt from scratch each time; there are no incremental
// updates. Watch rebuilds it whenever the source file changes.
package docs
