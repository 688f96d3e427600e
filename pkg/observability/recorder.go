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

package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	globalMetrics *Metrics
	metricsMu     sync.RWMutex
)

// Metrics records indexing and retrieval activity. A nil *Metrics is a
// valid no-op recorder, so callers never need to guard their calls.
type Metrics struct {
	documentsProcessed metric.Int64Counter
	chunksIndexed      metric.Int64Counter
	batchesFailed      metric.Int64Counter
	indexDuration      metric.Float64Histogram

	searchesTotal  metric.Int64Counter
	searchErrors   metric.Int64Counter
	searchDuration metric.Float64Histogram
}

// RecordIndexRun records one completed indexing run.
func (m *Metrics) RecordIndexRun(ctx context.Context, documents, chunks int, duration time.Duration) {
	if m == nil || m.indexDuration == nil {
		return
	}

	m.documentsProcessed.Add(ctx, int64(documents))
	m.chunksIndexed.Add(ctx, int64(chunks))
	m.indexDuration.Record(ctx, duration.Seconds())
}

// RecordBatchFailure records one upsert batch that failed after retries.
func (m *Metrics) RecordBatchFailure(ctx context.Context) {
	if m == nil || m.batchesFailed == nil {
		return
	}

	m.batchesFailed.Add(ctx, 1)
}

// RecordSearch records one search query.
func (m *Metrics) RecordSearch(ctx context.Context, collection string, duration time.Duration, err error) {
	if m == nil || m.searchesTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("collection", collection),
	}

	m.searchesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.searchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err != nil && m.searchErrors != nil {
		m.searchErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// SetGlobalMetrics installs the process-wide metrics recorder.
func SetGlobalMetrics(m *Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

// GetGlobalMetrics returns the process-wide metrics recorder, which is
// nil (a no-op) until SetGlobalMetrics is called.
func GetGlobalMetrics() *Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}
