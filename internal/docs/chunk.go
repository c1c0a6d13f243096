// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Default chunking parameters, in runes.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// ErrInvalidChunking is returned for a size/overlap pair that cannot advance.
var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// ChunkReader splits r into windows of size runes, each starting
// size-overlap runes after the previous one. Input is consumed line by line;
// whatever remains at EOF becomes the final chunk. emit is called in order
// and may stop the walk by returning an error.
func ChunkReader(r io.Reader, size, overlap int, emit func(chunk string) error) error {
	if size <= 0 || overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, size, overlap)
	}

	br := bufio.NewReader(r)
	var buf []rune
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			buf = append(buf, []rune(line)...)
			for len(buf) >= size {
				if emitErr := emit(string(buf[:size])); emitErr != nil {
					return emitErr
				}
				buf = append(buf[:0:0], buf[size-overlap:]...)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read docs: %w", err)
		}
	}

	if len(buf) > 0 {
		return emit(string(buf))
	}
	return nil
}

// ChunkText splits text in memory. See ChunkReader.
func ChunkText(text string, size, overlap int) ([]string, error) {
	var chunks []string
	err := ChunkReader(strings.NewReader(text), size, overlap, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	return chunks, err
}
