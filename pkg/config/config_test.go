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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, "documents", cfg.Collection)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "ollama", cfg.Embedder.Provider)
	assert.Equal(t, "all-minilm:l6-v2", cfg.Embedder.Model)
	assert.Equal(t, 512, cfg.Embedder.MaxTokens)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 32, cfg.Indexer.BatchSize)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		var cfg Config
		cfg.SetDefaults()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("openai requires api key", func(t *testing.T) {
		var cfg Config
		cfg.Embedder.Provider = "openai"
		cfg.SetDefaults()
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "api_key")
	})

	t.Run("rejects unknown embedder provider", func(t *testing.T) {
		var cfg Config
		cfg.SetDefaults()
		cfg.Embedder.Provider = "fastembed"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects overlap >= size", func(t *testing.T) {
		var cfg Config
		cfg.SetDefaults()
		cfg.Chunking.Size = 100
		cfg.Chunking.Overlap = 100
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_QDRANT_HOST", "qdrant.internal")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
collection: reports
qdrant:
  host: ${TEST_QDRANT_HOST}
  port: 6334
  api_key: ${TEST_QDRANT_API_KEY:-secret-default}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "reports", cfg.Collection)
	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, "secret-default", cfg.Qdrant.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("QDRANT_HOST", "10.0.0.5")
	t.Setenv("QDRANT_PORT", "7000")
	t.Setenv("COLLECTION_NAME", "contracts")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.Qdrant.Host)
	assert.Equal(t, 7000, cfg.Qdrant.Port)
	assert.Equal(t, "contracts", cfg.Collection)

	t.Run("rejects malformed port", func(t *testing.T) {
		t.Setenv("QDRANT_PORT", "not-a-port")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCSEARCH_TEST_VAR", "value1")

	assert.Equal(t, "value1", expandEnvVars("${DOCSEARCH_TEST_VAR}"))
	assert.Equal(t, "value1", expandEnvVars("$DOCSEARCH_TEST_VAR"))
	assert.Equal(t, "fallback", expandEnvVars("${DOCSEARCH_UNSET_VAR:-fallback}"))
	assert.Equal(t, "no vars here", expandEnvVars("no vars here"))
}
