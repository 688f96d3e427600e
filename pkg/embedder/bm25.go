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

package embedder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// BM25Embedder implements SparseEmbedder with BM25 term weights over
// BPE token IDs.
//
// The sparse index of a term is its cl100k_base token ID, so the same
// term always maps to the same index on the indexing and query paths.
// Weights are the document-side BM25 term saturation:
//
//	w(t) = tf * (k1 + 1) / (tf + k1 * (1 - b + b * len/avgLen))
//
// Corpus-level IDF is left to the vector store (Qdrant supports an IDF
// modifier on sparse fields), which keeps the encoder stateless and
// deterministic per text.
type BM25Embedder struct {
	encoding  *tiktoken.Tiktoken
	truncator *Truncator
	k1        float64
	b         float64
	avgLen    float64
}

// BM25Config configures the BM25 sparse embedder.
type BM25Config struct {
	// K1 controls term-frequency saturation (default: 1.2).
	K1 float64

	// B controls length normalization (default: 0.75).
	B float64

	// AvgDocLen is the assumed average document length in tokens
	// (default: 256).
	AvgDocLen float64

	// Truncator applied before embedding (required).
	Truncator *Truncator
}

// NewBM25Embedder creates a new BM25 sparse embedder.
func NewBM25Embedder(cfg BM25Config) (*BM25Embedder, error) {
	if cfg.Truncator == nil {
		return nil, fmt.Errorf("truncator is required")
	}
	if cfg.K1 == 0 {
		cfg.K1 = 1.2
	}
	if cfg.B == 0 {
		cfg.B = 0.75
	}
	if cfg.AvgDocLen == 0 {
		cfg.AvgDocLen = 256
	}
	if cfg.B < 0 || cfg.B > 1 {
		return nil, fmt.Errorf("b must be in [0, 1], got %v", cfg.B)
	}

	encoding, err := getEncoding(DefaultEncoding)
	if err != nil {
		return nil, err
	}

	return &BM25Embedder{
		encoding:  encoding,
		truncator: cfg.Truncator,
		k1:        cfg.K1,
		b:         cfg.B,
		avgLen:    cfg.AvgDocLen,
	}, nil
}

// EmbedSparse converts text to a sparse BM25 term-weight vector.
// Indices are sorted ascending; whitespace-only tokens carry no signal
// and are dropped.
func (e *BM25Embedder) EmbedSparse(ctx context.Context, text string) (SparseVector, error) {
	if err := ctx.Err(); err != nil {
		return SparseVector{}, err
	}

	normalized := strings.ToLower(e.truncator.Truncate(text))
	tokens := e.encoding.Encode(normalized, nil, nil)
	if len(tokens) == 0 {
		return SparseVector{}, nil
	}

	counts := make(map[int]int, len(tokens))
	kept := 0
	for _, tok := range tokens {
		if strings.TrimSpace(e.encoding.Decode([]int{tok})) == "" {
			continue
		}
		counts[tok]++
		kept++
	}
	if kept == 0 {
		return SparseVector{}, nil
	}

	norm := e.k1 * (1 - e.b + e.b*float64(kept)/e.avgLen)

	indices := make([]uint32, 0, len(counts))
	for tok := range counts {
		indices = append(indices, uint32(tok))
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		tf := float64(counts[int(idx)])
		values[i] = float32(tf * (e.k1 + 1) / (tf + norm))
	}

	return SparseVector{Indices: indices, Values: values}, nil
}

// Model returns the model name being used.
func (e *BM25Embedder) Model() string {
	return "bm25-" + DefaultEncoding
}

// Ensure BM25Embedder implements SparseEmbedder.
var _ SparseEmbedder = (*BM25Embedder)(nil)
