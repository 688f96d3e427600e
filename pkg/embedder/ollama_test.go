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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/docsearch/pkg/config"
)

func testTruncator(t *testing.T) *Truncator {
	t.Helper()
	truncator, err := NewTruncator(512)
	require.NoError(t, err)
	return truncator
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	var gotPath string
	var gotReq ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	emb, err := NewOllamaEmbedder(OllamaConfig{
		BaseURL:   server.URL,
		Model:     "all-minilm:l6-v2",
		Dimension: 3,
		Truncator: testTruncator(t),
	})
	require.NoError(t, err)

	vec, err := emb.Embed(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "/api/embed", gotPath)
	assert.Equal(t, "all-minilm:l6-v2", gotReq.Model)
	assert.Equal(t, "hello world", gotReq.Input)
	assert.Equal(t, 3, emb.Dimension())
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	emb, err := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL, Truncator: testTruncator(t)})
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaEmbedder_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{})
	}))
	defer server.Close()

	emb, err := NewOllamaEmbedder(OllamaConfig{BaseURL: server.URL, Truncator: testTruncator(t)})
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestOllamaEmbedder_DefaultDimensions(t *testing.T) {
	emb, err := NewOllamaEmbedder(OllamaConfig{Truncator: testTruncator(t)})
	require.NoError(t, err)
	assert.Equal(t, 384, emb.Dimension())
	assert.Equal(t, "all-minilm:l6-v2", emb.Model())
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(openaiResponse{
			Data: []struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{{Embedding: []float32{0.5, 0.6}, Index: 0}},
		})
	}))
	defer server.Close()

	emb, err := NewOpenAIEmbedder(OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "text-embedding-3-small",
		Dimension: 2,
		Truncator: testTruncator(t),
	})
	require.NoError(t, err)

	vec, err := emb.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.6}, vec)
}

func TestOpenAIEmbedder_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(OpenAIConfig{Truncator: nil})
	assert.Error(t, err)
}

func TestNewProviderFromConfig(t *testing.T) {
	t.Run("ollama default", func(t *testing.T) {
		cfg := &config.EmbedderConfig{}
		provider, err := NewProviderFromConfig(cfg)
		require.NoError(t, err)
		assert.Equal(t, "all-minilm:l6-v2", provider.Dense.Model())
		assert.Equal(t, "bm25-"+DefaultEncoding, provider.Sparse.Model())
	})

	t.Run("openai without key fails", func(t *testing.T) {
		cfg := &config.EmbedderConfig{Provider: "openai"}
		_, err := NewProviderFromConfig(cfg)
		assert.Error(t, err)
	})

	t.Run("nil config fails", func(t *testing.T) {
		_, err := NewProviderFromConfig(nil)
		assert.Error(t, err)
	})
}
