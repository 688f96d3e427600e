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

// Package observability exposes indexing and retrieval metrics through
// OpenTelemetry with a Prometheus exporter.
package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics creates the Prometheus-backed meter and all instruments.
// The returned metrics record through the default Prometheus registry,
// so the /metrics handler picks them up without extra wiring.
func InitMetrics() (*Metrics, error) {
	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("docsearch")

	documentsProcessed, err := meter.Int64Counter(
		"docsearch_documents_processed_total",
		metric.WithDescription("Total PDF documents processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents counter: %w", err)
	}

	chunksIndexed, err := meter.Int64Counter(
		"docsearch_chunks_indexed_total",
		metric.WithDescription("Total chunks written to the vector store"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunks counter: %w", err)
	}

	batchesFailed, err := meter.Int64Counter(
		"docsearch_index_batches_failed_total",
		metric.WithDescription("Total upsert batches that failed after retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failed batches counter: %w", err)
	}

	indexDuration, err := meter.Float64Histogram(
		"docsearch_index_duration_seconds",
		metric.WithDescription("Indexing run duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create index duration histogram: %w", err)
	}

	searchesTotal, err := meter.Int64Counter(
		"docsearch_searches_total",
		metric.WithDescription("Total search queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create searches counter: %w", err)
	}

	searchErrors, err := meter.Int64Counter(
		"docsearch_search_errors_total",
		metric.WithDescription("Total failed search queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search errors counter: %w", err)
	}

	searchDuration, err := meter.Float64Histogram(
		"docsearch_search_duration_seconds",
		metric.WithDescription("Search query duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search duration histogram: %w", err)
	}

	return &Metrics{
		documentsProcessed: documentsProcessed,
		chunksIndexed:      chunksIndexed,
		batchesFailed:      batchesFailed,
		indexDuration:      indexDuration,
		searchesTotal:      searchesTotal,
		searchErrors:       searchErrors,
		searchDuration:     searchDuration,
	}, nil
}
