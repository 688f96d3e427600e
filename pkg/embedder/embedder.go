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

// Package embedder converts text into dense and sparse vector
// representations for hybrid retrieval.
//
// Both representations are deterministic: the same text with the same
// model always yields the same vectors. Texts longer than the configured
// token limit are truncated at the token boundary, and the same
// truncation applies on the indexing and the query path.
package embedder

import "context"

// DenseEmbedder converts text into a fixed-dimension dense vector.
type DenseEmbedder interface {
	// Embed converts text to a dense vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// Model returns the model name being used.
	Model() string

	// Close releases any resources.
	Close() error
}

// SparseVector is a variable-length set of (term index, weight) pairs.
// Indices and Values always have equal length.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// IsEmpty reports whether the vector has no non-zero terms.
func (v SparseVector) IsEmpty() bool {
	return len(v.Indices) == 0
}

// SparseEmbedder converts text into a sparse term-weight vector.
type SparseEmbedder interface {
	// EmbedSparse converts text to a sparse vector embedding.
	EmbedSparse(ctx context.Context, text string) (SparseVector, error)

	// Model returns the model name being used.
	Model() string
}
