// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Processor converts a directory of PDF files into chunks.
type Processor struct {
	chunker *Chunker
}

// NewProcessor creates a processor with the given chunker.
func NewProcessor(chunker *Chunker) *Processor {
	if chunker == nil {
		chunker = NewChunker(0, 0)
	}
	return &Processor{chunker: chunker}
}

// Process extracts and chunks every PDF in dir.
//
// Files are parsed concurrently but the returned chunks keep
// file-then-page-then-chunk order. Files that fail extraction are
// logged and reported in Result.Failures; the call errors only when
// the directory has no PDFs at all or every file fails.
func (p *Processor) Process(ctx context.Context, dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsPDF(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF documents found in %s", dir)
	}

	type fileResult struct {
		chunks []Chunk
		err    error
	}
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			chunks, err := p.processFile(gctx, path)
			results[i] = fileResult{chunks: chunks, err: err}
			// Per-file failures are collected, not propagated:
			// one unreadable PDF must not cancel its siblings.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, r := range results {
		if r.err != nil {
			slog.Warn("Failed to process document", "file", paths[i], "error", r.err)
			result.Failures = append(result.Failures, FileFailure{Path: paths[i], Err: r.err})
			continue
		}
		result.Chunks = append(result.Chunks, r.chunks...)
		result.Processed++
	}

	if len(result.Chunks) == 0 {
		return nil, fmt.Errorf("failed to process any document in %s: %d file(s) failed", dir, len(result.Failures))
	}

	slog.Info("Processed documents",
		"dir", dir,
		"files", result.Processed,
		"failed", len(result.Failures),
		"chunks", len(result.Chunks))

	return result, nil
}

// ProcessFile extracts and chunks a single PDF file.
func (p *Processor) ProcessFile(ctx context.Context, path string) ([]Chunk, error) {
	if !IsPDF(path) {
		return nil, fmt.Errorf("not a PDF file: %s", path)
	}
	return p.processFile(ctx, path)
}

func (p *Processor) processFile(ctx context.Context, path string) ([]Chunk, error) {
	pages, meta, err := extractPDF(ctx, path)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for _, page := range pages {
		for _, text := range p.chunker.Split(page.Text) {
			chunks = append(chunks, Chunk{
				Text:      text,
				File:      meta,
				PageLabel: page.Label,
			})
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunkable text in %s", meta.FileName)
	}

	return chunks, nil
}
