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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBM25(t *testing.T) *BM25Embedder {
	t.Helper()
	truncator, err := NewTruncator(512)
	require.NoError(t, err)
	emb, err := NewBM25Embedder(BM25Config{Truncator: truncator})
	require.NoError(t, err)
	return emb
}

func TestBM25Embedder_Deterministic(t *testing.T) {
	emb := newTestBM25(t)
	ctx := context.Background()

	text := "Reciprocal rank fusion combines sparse and dense rankings."

	first, err := emb.EmbedSparse(ctx, text)
	require.NoError(t, err)
	second, err := emb.EmbedSparse(ctx, text)
	require.NoError(t, err)

	assert.Equal(t, first.Indices, second.Indices)
	assert.Equal(t, first.Values, second.Values)
}

func TestBM25Embedder_Shape(t *testing.T) {
	emb := newTestBM25(t)

	vec, err := emb.EmbedSparse(context.Background(), "hybrid retrieval over PDF documents")
	require.NoError(t, err)

	require.False(t, vec.IsEmpty())
	assert.Len(t, vec.Values, len(vec.Indices))

	// Indices sorted ascending, weights strictly positive
	for i := 1; i < len(vec.Indices); i++ {
		assert.Less(t, vec.Indices[i-1], vec.Indices[i])
	}
	for _, w := range vec.Values {
		assert.Greater(t, w, float32(0))
	}
}

func TestBM25Embedder_CaseInsensitive(t *testing.T) {
	emb := newTestBM25(t)
	ctx := context.Background()

	lower, err := emb.EmbedSparse(ctx, "quarterly report")
	require.NoError(t, err)
	upper, err := emb.EmbedSparse(ctx, "QUARTERLY REPORT")
	require.NoError(t, err)

	assert.Equal(t, lower.Indices, upper.Indices)
	assert.Equal(t, lower.Values, upper.Values)
}

func TestBM25Embedder_RepeatedTermsSaturate(t *testing.T) {
	emb := newTestBM25(t)
	ctx := context.Background()

	once, err := emb.EmbedSparse(ctx, "budget")
	require.NoError(t, err)
	repeated, err := emb.EmbedSparse(ctx, "budget budget budget budget")
	require.NoError(t, err)

	require.False(t, once.IsEmpty())
	require.False(t, repeated.IsEmpty())

	// Same term index, heavier but sub-linear weight
	assert.Equal(t, once.Indices, repeated.Indices)
	assert.Greater(t, repeated.Values[0], once.Values[0])
	assert.Less(t, repeated.Values[0], once.Values[0]*4)
}

func TestBM25Embedder_EmptyText(t *testing.T) {
	emb := newTestBM25(t)

	vec, err := emb.EmbedSparse(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, vec.IsEmpty())

	vec, err = emb.EmbedSparse(context.Background(), "   \n\t  ")
	require.NoError(t, err)
	assert.True(t, vec.IsEmpty())
}

func TestBM25Embedder_RequiresTruncator(t *testing.T) {
	_, err := NewBM25Embedder(BM25Config{})
	assert.Error(t, err)
}

func TestTruncator(t *testing.T) {
	truncator, err := NewTruncator(4)
	require.NoError(t, err)

	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", truncator.Truncate("hello"))
	})

	t.Run("long text cut at token boundary", func(t *testing.T) {
		long := "one two three four five six seven eight nine ten"
		cut := truncator.Truncate(long)
		assert.Less(t, len(cut), len(long))
		assert.LessOrEqual(t, truncator.CountTokens(cut), 4)
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		_, err := NewTruncator(0)
		assert.Error(t, err)
	})
}
