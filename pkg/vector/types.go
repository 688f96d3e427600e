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

// Package vector provides the client for the vector index holding dual
// (dense + sparse) representations of document chunks.
package vector

import (
	"context"

	"github.com/kadirpekel/docsearch/pkg/embedder"
)

// Named vector fields of every point in the collection.
const (
	DenseVectorName  = "dense"
	SparseVectorName = "sparse"
)

// Payload is the stored metadata of one point. It mirrors chunk
// metadata plus the chunk text itself.
type Payload struct {
	Text             string
	FileName         string
	FilePath         string
	FileType         string
	FileSize         int64
	CreationDate     string
	LastModifiedDate string
	PageLabel        string // optional, empty when the source page had no label
}

// Point is one record to be stored: identifier, both vector
// representations and the payload. Immutable once upserted.
type Point struct {
	ID      string
	Dense   []float32
	Sparse  embedder.SparseVector
	Payload Payload
}

// ScoredPoint is one fused query result.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload Payload
}

// HybridQuery is a dual-prefetch rank-fusion query: the sparse and
// dense sub-queries each retrieve up to Limit candidates, the store
// fuses the two rankings with RRF, and the optional Filter is applied
// to both sub-queries before fusion.
type HybridQuery struct {
	Dense  []float32
	Sparse embedder.SparseVector
	Filter *Filter
	Limit  uint64
}

// Store is the vector index interface consumed by the indexer, the
// retrieval engine and the document summary read-model.
type Store interface {
	// EnsureCollection creates the collection with the given dense
	// dimension if it does not exist. Idempotent: an existing
	// collection is left untouched regardless of dimension.
	EnsureCollection(ctx context.Context, denseDimension uint64) error

	// UpsertBatch writes one batch of points, waiting for the write
	// to be applied.
	UpsertBatch(ctx context.Context, points []Point) error

	// HybridQuery runs a dual-prefetch RRF query and returns at most
	// q.Limit points in descending fused-score order.
	HybridQuery(ctx context.Context, q HybridQuery) ([]ScoredPoint, error)

	// Scroll reads up to limit stored points with payloads, without
	// any ranking. Used by the document summary read-model.
	Scroll(ctx context.Context, limit uint32) ([]ScoredPoint, error)

	// Close releases the underlying connection.
	Close() error
}
