// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrBuilding      = errors.New("index build in progress")
	ErrDatabaseError = errors.New("database error")
	ErrInvalidPath   = errors.New("invalid path")
)

// =============================================================================
// INDEX
// =============================================================================

// Chunk is one stored window of the documentation.
type Chunk struct {
	ID      int64
	Source  string
	Index   int
	Content string
	// Rank is the bm25 score; lower is a better match.
	Rank float64
}

// Index is the SQLite-backed documentation index. It is safe for concurrent
// use; searches wait while a rebuild is running.
type Index struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex

	buildMu  sync.Mutex
	building bool

	count     int
	source    string
	lastBuilt time.Time

	chunkSize    int
	chunkOverlap int
	logger       zerolog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithChunking overrides the chunk size and overlap (in runes).
func WithChunking(size, overlap int) Option {
	return func(idx *Index) {
		if size > 0 {
			idx.chunkSize = size
		}
		if overlap >= 0 {
			idx.chunkOverlap = overlap
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// Open opens (creating if needed) the index database at dbPath.
func Open(dbPath string, opts ...Option) (*Index, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: empty database path", ErrInvalidPath)
	}

	idx := &Index{
		path:         dbPath,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.chunkOverlap >= idx.chunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, idx.chunkSize, idx.chunkOverlap)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000", // 16MB cache
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx.db = db
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := idx.loadStats(); err != nil {
		idx.logger.Warn().Err(err).Msg("could not load index stats")
	}

	return idx, nil
}

// initSchema creates the database schema
func (idx *Index) initSchema() error {
	if _, err := idx.db.Exec(Schema); err != nil {
		return err
	}
	_, err := idx.db.Exec(InitMetadata)
	return err
}

// Close closes the database.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// =============================================================================
// BUILDING
// =============================================================================

// Rebuild replaces the whole collection with the chunks of sourcePath in a
// single transaction and returns the new chunk count. On failure the previous
// collection is kept.
func (idx *Index) Rebuild(ctx context.Context, sourcePath string) (int, error) {
	idx.buildMu.Lock()
	if idx.building {
		idx.buildMu.Unlock()
		return 0, ErrBuilding
	}
	idx.building = true
	idx.buildMu.Unlock()

	defer func() {
		idx.buildMu.Lock()
		idx.building = false
		idx.buildMu.Unlock()
	}()

	source, err := filepath.Abs(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	f, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	defer f.Close()

	startTime := time.Now()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return 0, fmt.Errorf("failed to clear chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chunks (source, chunk_index, content) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer stmt.Close()

	n := 0
	err = ChunkReader(f, idx.chunkSize, idx.chunkOverlap, func(chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, source, n, chunk); err != nil {
			return fmt.Errorf("insert chunk %d: %w", n, err)
		}
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, "UPDATE metadata SET value = ? WHERE key = 'last_build'", strconv.FormatInt(now.Unix(), 10)); err != nil {
		return 0, fmt.Errorf("failed to update metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE metadata SET value = ? WHERE key = 'source'", source); err != nil {
		return 0, fmt.Errorf("failed to update metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrDatabaseError, err)
	}

	idx.count = n
	idx.source = source
	idx.lastBuilt = time.Unix(now.Unix(), 0)

	idx.logger.Info().
		Str("source", source).
		Int("chunks", n).
		Dur("took", time.Since(startTime)).
		Msg("docs index rebuilt")

	return n, nil
}

// =============================================================================
// STATISTICS
// =============================================================================

// loadStats reads the chunk count and build metadata from the database.
func (idx *Index) loadStats() error {
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&idx.count); err != nil {
		return err
	}

	var lastBuild string
	if err := idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'last_build'").Scan(&lastBuild); err != nil {
		return err
	}
	if ts, err := strconv.ParseInt(lastBuild, 10, 64); err == nil && ts > 0 {
		idx.lastBuilt = time.Unix(ts, 0)
	}
	return idx.db.QueryRow("SELECT value FROM metadata WHERE key = 'source'").Scan(&idx.source)
}

// Stats describes the current collection.
type Stats struct {
	Chunks    int
	Source    string
	LastBuilt time.Time
}

// Stats returns the current collection statistics.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return Stats{
		Chunks:    idx.count,
		Source:    idx.source,
		LastBuilt: idx.lastBuilt,
	}
}

// Count returns the number of stored chunks.
func (idx *Index) Count() int {
	return idx.Stats().Chunks
}
