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

// Package search runs hybrid retrieval queries against the vector
// store and shapes the results for callers.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kadirpekel/docsearch/pkg/embedder"
	"github.com/kadirpekel/docsearch/pkg/observability"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// DefaultLimit is the result count used when the caller does not ask
// for a specific one.
const DefaultLimit = 5

// Engine embeds queries and runs fused dense plus sparse retrieval.
type Engine struct {
	store      vector.Store
	embedders  *embedder.Provider
	collection string
}

// NewEngine creates a retrieval engine over the given store and
// embedders. The collection name is only used for metric labels.
func NewEngine(store vector.Store, embedders *embedder.Provider, collection string) *Engine {
	return &Engine{
		store:      store,
		embedders:  embedders,
		collection: collection,
	}
}

// Search embeds the query with both representations and runs a single
// rank-fused query. Results come back in descending fused-score order.
// The optional filter narrows both sub-queries before fusion.
func (e *Engine) Search(ctx context.Context, query string, filter *vector.Filter, limit uint64) ([]vector.ScoredPoint, error) {
	start := time.Now()
	points, err := e.search(ctx, query, filter, limit)
	observability.GetGlobalMetrics().RecordSearch(ctx, e.collection, time.Since(start), err)
	return points, err
}

func (e *Engine) search(ctx context.Context, query string, filter *vector.Filter, limit uint64) ([]vector.ScoredPoint, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if limit == 0 {
		limit = DefaultLimit
	}

	dense, err := e.embedders.Dense.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	sparse, err := e.embedders.Sparse.EmbedSparse(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sparse-embed query: %w", err)
	}

	points, err := e.store.HybridQuery(ctx, vector.HybridQuery{
		Dense:  dense,
		Sparse: sparse,
		Filter: filter,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Search complete",
		"results", len(points),
		"limit", limit,
		"filtered", !filter.IsEmpty())

	return points, nil
}

// Query runs Search and returns just the chunk texts in fused order.
func (e *Engine) Query(ctx context.Context, query string, filter *vector.Filter, limit uint64) ([]string, error) {
	points, err := e.Search(ctx, query, filter, limit)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(points))
	for _, p := range points {
		texts = append(texts, p.Payload.Text)
	}

	return texts, nil
}
