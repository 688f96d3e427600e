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

// Package index turns document chunks into dual-vector points and
// writes them to the vector store in batches.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/docsearch/pkg/config"
	"github.com/kadirpekel/docsearch/pkg/document"
	"github.com/kadirpekel/docsearch/pkg/embedder"
	"github.com/kadirpekel/docsearch/pkg/observability"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// dimensionProbeText is embedded once at setup time to learn the dense
// dimension from the model itself instead of trusting configuration.
const dimensionProbeText = "dimension probe"

// Report is the outcome of one indexing run. There is no rollback:
// chunks from successful batches stay in the store even when later
// batches fail.
type Report struct {
	ChunksTotal   int
	ChunksIndexed int
	BatchesTotal  int
	BatchesFailed int
	Duration      time.Duration
}

// Success reports whether every batch was written.
func (r *Report) Success() bool {
	return r.BatchesFailed == 0
}

// Indexer embeds chunks and upserts them into the vector store.
type Indexer struct {
	store     vector.Store
	embedders *embedder.Provider
	batchSize int
	retryer   *Retryer
}

// NewIndexer creates an indexer over the given store and embedders.
func NewIndexer(store vector.Store, embedders *embedder.Provider, cfg config.IndexerConfig) *Indexer {
	cfg.SetDefaults()

	return &Indexer{
		store:     store,
		embedders: embedders,
		batchSize: cfg.BatchSize,
		retryer: NewRetryer(RetryConfig{
			MaxRetries: cfg.MaxRetries,
		}),
	}
}

// SetupCollection ensures the target collection exists, probing the
// dense embedder once for its output dimension. Safe to call on every
// startup; an existing collection is left untouched.
func (i *Indexer) SetupCollection(ctx context.Context) error {
	probe, err := i.embedders.Dense.Embed(ctx, dimensionProbeText)
	if err != nil {
		return fmt.Errorf("failed to probe embedding dimension: %w", err)
	}
	if len(probe) == 0 {
		return fmt.Errorf("embedder %s returned an empty probe vector", i.embedders.Dense.Model())
	}

	if err := i.store.EnsureCollection(ctx, uint64(len(probe))); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	return nil
}

// Index embeds all chunks and writes them in batches. Batches are
// written sequentially; a batch that still fails after retries is
// counted and skipped, and the run continues with the next batch.
//
// The returned report is never nil. An error is returned only for
// failures that make continuing pointless, such as a cancelled context
// or an embedder that cannot produce vectors at all.
func (i *Indexer) Index(ctx context.Context, chunks []document.Chunk) (*Report, error) {
	start := time.Now()
	report := &Report{ChunksTotal: len(chunks)}

	if len(chunks) == 0 {
		return report, nil
	}

	slog.Info("Indexing chunks",
		"chunks", len(chunks),
		"batch_size", i.batchSize)

	for batchStart := 0; batchStart < len(chunks); batchStart += i.batchSize {
		batchEnd := batchStart + i.batchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]
		report.BatchesTotal++

		points, err := i.embedBatch(ctx, batch)
		if err != nil {
			return report, err
		}

		err = i.retryer.Do(ctx, "upsert batch", func() error {
			return i.store.UpsertBatch(ctx, points)
		})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.BatchesFailed++
			observability.GetGlobalMetrics().RecordBatchFailure(ctx)
			slog.Error("Batch upsert failed",
				"batch", report.BatchesTotal,
				"chunks", len(batch),
				"first_file", batch[0].File.FileName,
				"error", err)
			continue
		}

		report.ChunksIndexed += len(batch)
	}

	report.Duration = time.Since(start)

	if report.Success() {
		slog.Info("Indexing complete",
			"chunks", report.ChunksIndexed,
			"batches", report.BatchesTotal,
			"duration", report.Duration)
	} else {
		slog.Warn("Indexing finished with failures",
			"chunks_indexed", report.ChunksIndexed,
			"chunks_total", report.ChunksTotal,
			"batches_failed", report.BatchesFailed,
			"batches_total", report.BatchesTotal,
			"duration", report.Duration)
	}

	return report, nil
}

// embedBatch produces one point per chunk, computing both the dense and
// the sparse representation from the same chunk text.
func (i *Indexer) embedBatch(ctx context.Context, batch []document.Chunk) ([]vector.Point, error) {
	points := make([]vector.Point, 0, len(batch))

	for _, chunk := range batch {
		dense, err := i.embedders.Dense.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk from %s: %w", chunk.File.FileName, err)
		}

		sparse, err := i.embedders.Sparse.EmbedSparse(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to sparse-embed chunk from %s: %w", chunk.File.FileName, err)
		}

		points = append(points, vector.Point{
			ID:     uuid.NewString(),
			Dense:  dense,
			Sparse: sparse,
			Payload: vector.Payload{
				Text:             chunk.Text,
				FileName:         chunk.File.FileName,
				FilePath:         chunk.File.FilePath,
				FileType:         chunk.File.FileType,
				FileSize:         chunk.File.FileSize,
				CreationDate:     chunk.File.CreationDate,
				LastModifiedDate: chunk.File.LastModifiedDate,
				PageLabel:        chunk.PageLabel,
			},
		})
	}

	return points, nil
}
