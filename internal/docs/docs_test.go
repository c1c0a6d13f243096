// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CHUNKING
// =============================================================================

func TestChunkText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{"overlapping windows", "abcdefghij", 4, 1, []string{"abcd", "defg", "ghij", "j"}},
		{"spans lines", "ab\ncd\n", 4, 1, []string{"ab\nc", "cd\n"}},
		{"counts runes", "ééééé", 2, 0, []string{"éé", "éé", "é"}},
		{"shorter than size", "hello", 500, 100, []string{"hello"}},
		{"empty", "", 500, 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChunkText(tt.text, tt.size, tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunk_InvalidParameters(t *testing.T) {
	for _, p := range [][2]int{{0, 0}, {10, 10}, {10, 20}, {10, -1}} {
		_, err := ChunkText("text", p[0], p[1])
		assert.ErrorIs(t, err, ErrInvalidChunking, "size=%d overlap=%d", p[0], p[1])
	}
}

func TestChunkReader_StopsOnEmitError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := ChunkReader(strings.NewReader(strings.Repeat("x", 100)), 10, 0, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

// =============================================================================
// INDEX
// =============================================================================

const sampleDocs = `Webhook nodes start a workflow when an HTTP request arrives at a unique URL.
The Schedule trigger runs workflows at fixed intervals, like a cron job.
Credentials are stored encrypted and shared between nodes that need them.
The Code node lets you write JavaScript to transform items.
`

func writeDocs(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "docs.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openIndex(t *testing.T, dir string) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(dir, "db", "docs.db"), WithChunking(80, 0))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := Open("")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = Open(filepath.Join(t.TempDir(), "docs.db"), WithChunking(10, 10))
	assert.ErrorIs(t, err, ErrInvalidChunking)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := openIndex(t, t.TempDir())

	assert.Equal(t, 0, idx.Count())
	results, err := idx.Search(context.Background(), "webhook", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRebuildAndSearch(t *testing.T) {
	dir := t.TempDir()
	idx := openIndex(t, dir)
	ctx := context.Background()

	source := writeDocs(t, dir, sampleDocs)
	n, err := idx.Rebuild(ctx, source)
	require.NoError(t, err)
	assert.Greater(t, n, 1)
	assert.Equal(t, n, idx.Count())

	stats := idx.Stats()
	assert.Equal(t, source, stats.Source)
	assert.True(t, filepath.IsAbs(stats.Source))
	assert.False(t, stats.LastBuilt.IsZero())

	// Porter stemming: "webhooks" matches "Webhook".
	results, err := idx.Search(ctx, "How do webhooks work?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "Webhook")

	results, err = idx.Search(ctx, "javascript", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "JavaScript")
	assert.Equal(t, []string{results[0].Content}, Contents(results))
}

func TestSearch_IgnoresQuerySyntax(t *testing.T) {
	dir := t.TempDir()
	idx := openIndex(t, dir)
	ctx := context.Background()
	_, err := idx.Rebuild(ctx, writeDocs(t, dir, sampleDocs))
	require.NoError(t, err)

	for _, q := range []string{`"NEAR(`, `AND OR *`, `credentials:*`, "???", ""} {
		_, err := idx.Search(ctx, q, 5)
		assert.NoError(t, err, q)
	}

	results, err := idx.Search(ctx, "webhook", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRebuild_ReplacesCollection(t *testing.T) {
	dir := t.TempDir()
	idx := openIndex(t, dir)
	ctx := context.Background()

	path := writeDocs(t, dir, sampleDocs)
	_, err := idx.Rebuild(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Only the expression editor is documented here.\n"), 0644))
	n, err := idx.Rebuild(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := idx.Search(ctx, "webhook", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search(ctx, "expression", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRebuild_MissingSourceKeepsCollection(t *testing.T) {
	dir := t.TempDir()
	idx := openIndex(t, dir)
	ctx := context.Background()

	n, err := idx.Rebuild(ctx, writeDocs(t, dir, sampleDocs))
	require.NoError(t, err)

	_, err = idx.Rebuild(ctx, filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.Equal(t, n, idx.Count())
}

func TestOpen_LoadsPersistedStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "docs.db")

	idx, err := Open(dbPath, WithChunking(80, 0))
	require.NoError(t, err)
	source := writeDocs(t, dir, sampleDocs)
	n, err := idx.Rebuild(context.Background(), source)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, n, reopened.Count())
	assert.Equal(t, source, reopened.Stats().Source)
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	idx := openIndex(t, dir)
	path := writeDocs(t, dir, sampleDocs)

	rebuilt := make(chan int, 4)
	w, err := idx.Watch(path, 30*time.Millisecond, func(n int, err error) {
		if err == nil {
			rebuilt <- n
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("Variables hold values between runs.\n"), 0644))

	select {
	case n := <-rebuilt:
		assert.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("index was not rebuilt")
	}

	results, err := idx.Search(context.Background(), "variables", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
