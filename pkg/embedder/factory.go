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
	"fmt"
	"time"

	"github.com/kadirpekel/docsearch/pkg/config"
)

// Provider bundles the dense and sparse embedders behind one truncation
// policy. Both indexing and querying go through the same Provider so
// the two paths can never diverge.
type Provider struct {
	Dense  DenseEmbedder
	Sparse SparseEmbedder
}

// NewProviderFromConfig creates a Provider from configuration.
func NewProviderFromConfig(cfg *config.EmbedderConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embedder config is required")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedder config: %w", err)
	}

	truncator, err := NewTruncator(cfg.MaxTokens)
	if err != nil {
		return nil, err
	}

	var dense DenseEmbedder
	switch cfg.Provider {
	case "openai":
		dense, err = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			Timeout:   time.Duration(cfg.Timeout) * time.Second,
			Truncator: truncator,
		})
	default:
		dense, err = NewOllamaEmbedder(OllamaConfig{
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			Timeout:   time.Duration(cfg.Timeout) * time.Second,
			Truncator: truncator,
		})
	}
	if err != nil {
		return nil, err
	}

	sparse, err := NewBM25Embedder(BM25Config{Truncator: truncator})
	if err != nil {
		return nil, err
	}

	return &Provider{Dense: dense, Sparse: sparse}, nil
}
