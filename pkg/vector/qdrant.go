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

package vector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kadirpekel/docsearch/pkg/config"
)

// QdrantStore implements Store using the Qdrant vector database.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore creates a Qdrant-backed store for the configured
// collection.
func NewQdrantStore(cfg config.QdrantConfig, collection string) (*QdrantStore, error) {
	cfg.SetDefaults()
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client for %s:%d: %w\n"+
			"  TIP: Troubleshooting:\n"+
			"     - Ensure Qdrant is running\n"+
			"     - Verify host and port configuration\n"+
			"     - For Docker: start Qdrant container (docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant)",
			cfg.Host, cfg.Port, err)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
	}, nil
}

// Collection returns the collection name this store operates on.
func (s *QdrantStore) Collection() string {
	return s.collection
}

// EnsureCollection creates the collection with one dense and one sparse
// named vector field if it does not already exist. Calling it against
// an existing collection is a no-op; the dimension recorded at creation
// time stays authoritative.
func (s *QdrantStore) EnsureCollection(ctx context.Context, denseDimension uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		slog.Debug("Collection already exists", "collection", s.collection)
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			DenseVectorName: {
				Size:     denseDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			SparseVectorName: {
				Modifier: qdrant.Modifier_Idf.Enum(),
			},
		}),
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}

	slog.Info("Created collection",
		"collection", s.collection,
		"dense_dimension", denseDimension)
	return nil
}

// UpsertBatch writes one batch of points and waits until the write is
// applied, so batch-level failures are reported to the caller rather
// than deferred.
func (s *QdrantStore) UpsertBatch(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id: qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				DenseVectorName:  qdrant.NewVector(p.Dense...),
				SparseVectorName: qdrant.NewVectorSparse(p.Sparse.Indices, p.Sparse.Values),
			}),
			Payload: payloadToQdrant(p.Payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}

	return nil
}

// HybridQuery issues one fused query composed of a sparse and a dense
// prefetch, combined server-side with Reciprocal Rank Fusion. The
// optional filter applies to both prefetches equivalently.
func (s *QdrantStore) HybridQuery(ctx context.Context, q HybridQuery) ([]ScoredPoint, error) {
	if q.Limit == 0 {
		q.Limit = 5
	}

	qdrantFilter := buildQdrantFilter(q.Filter)

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query:  qdrant.NewQuerySparse(q.Sparse.Indices, q.Sparse.Values),
				Using:  qdrant.PtrOf(SparseVectorName),
				Limit:  qdrant.PtrOf(q.Limit),
				Filter: qdrantFilter,
			},
			{
				Query:  qdrant.NewQueryDense(q.Dense),
				Using:  qdrant.PtrOf(DenseVectorName),
				Limit:  qdrant.PtrOf(q.Limit),
				Filter: qdrantFilter,
			},
		},
		Query:       qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Filter:      qdrantFilter,
		Limit:       qdrant.PtrOf(q.Limit),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid query failed: %w", err)
	}

	results := make([]ScoredPoint, 0, len(points))
	for _, point := range points {
		results = append(results, ScoredPoint{
			ID:      pointIDString(point.Id),
			Score:   point.Score,
			Payload: payloadFromQdrant(point.Payload),
		})
	}

	return results, nil
}

// Scroll reads up to limit points with payloads in storage order.
func (s *QdrantStore) Scroll(ctx context.Context, limit uint32) ([]ScoredPoint, error) {
	if limit == 0 {
		limit = 10000
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll collection %s: %w", s.collection, err)
	}

	results := make([]ScoredPoint, 0, len(points))
	for _, point := range points {
		results = append(results, ScoredPoint{
			ID:      pointIDString(point.Id),
			Payload: payloadFromQdrant(point.Payload),
		})
	}

	return results, nil
}

// Close closes the Qdrant client.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// payloadToQdrant converts a typed payload to the Qdrant value map.
// The page_label key is present only when the chunk has one.
func payloadToQdrant(p Payload) map[string]*qdrant.Value {
	fields := map[string]any{
		"text":               p.Text,
		"file_name":          p.FileName,
		"file_path":          p.FilePath,
		"file_type":          p.FileType,
		"file_size":          p.FileSize,
		"creation_date":      p.CreationDate,
		"last_modified_date": p.LastModifiedDate,
	}
	if p.PageLabel != "" {
		fields["page_label"] = p.PageLabel
	}
	return qdrant.NewValueMap(fields)
}

// payloadFromQdrant converts a Qdrant value map back to a typed payload.
func payloadFromQdrant(values map[string]*qdrant.Value) Payload {
	str := func(key string) string {
		if v, ok := values[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	p := Payload{
		Text:             str("text"),
		FileName:         str("file_name"),
		FilePath:         str("file_path"),
		FileType:         str("file_type"),
		CreationDate:     str("creation_date"),
		LastModifiedDate: str("last_modified_date"),
		PageLabel:        str("page_label"),
	}
	if v, ok := values["file_size"]; ok {
		p.FileSize = v.GetIntegerValue()
	}
	return p
}

// buildQdrantFilter converts a typed filter to a Qdrant filter.
// Returns nil for an empty filter so unfiltered queries stay unfiltered.
func buildQdrantFilter(f *Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}

	var conditions []*qdrant.Condition
	if f.FileName != "" {
		conditions = append(conditions, qdrant.NewMatch("file_name", f.FileName))
	}
	if f.FileType != "" {
		conditions = append(conditions, qdrant.NewMatch("file_type", f.FileType))
	}
	if f.PageLabel != "" {
		conditions = append(conditions, qdrant.NewMatch("page_label", f.PageLabel))
	}

	return &qdrant.Filter{Must: conditions}
}

// pointIDString renders a Qdrant point ID as a string.
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	default:
		return ""
	}
}

// Ensure QdrantStore implements Store.
var _ Store = (*QdrantStore)(nil)
