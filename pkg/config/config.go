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

// Package config provides configuration types for the docsearch pipeline.
//
// All tunables live in one explicit Config struct that is validated at
// startup and passed to component constructors. Nothing reads process
// environment at request time.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// QdrantConfig configures the Qdrant vector store connection.
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host"`

	// Port is the Qdrant gRPC port (default: 6334).
	Port int `yaml:"port"`

	// APIKey for authenticated access (optional).
	APIKey string `yaml:"api_key,omitempty"`

	// UseTLS enables TLS connections.
	UseTLS bool `yaml:"use_tls,omitempty"`

	// Timeout is the per-request timeout in seconds (default: 30).
	Timeout int `yaml:"timeout,omitempty"`
}

// SetDefaults applies default values.
func (c *QdrantConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
}

// Validate checks the configuration for errors.
func (c *QdrantConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid qdrant port: %d", c.Port)
	}
	return nil
}

// EmbedderConfig configures the dense embedding provider.
type EmbedderConfig struct {
	// Provider is the embedding backend.
	// Values: "ollama", "openai"
	// Default: "ollama"
	Provider string `yaml:"provider,omitempty"`

	// BaseURL for the embedding API (provider-specific default).
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey for the embedding API (required for openai).
	APIKey string `yaml:"api_key,omitempty"`

	// Model name (default: all-minilm:l6-v2 for ollama).
	Model string `yaml:"model,omitempty"`

	// Dimension of the dense vectors (auto-detected from model if 0).
	Dimension int `yaml:"dimension,omitempty"`

	// Timeout is the request timeout in seconds (default: 30).
	Timeout int `yaml:"timeout,omitempty"`

	// MaxTokens is the truncation limit applied before embedding.
	// The same limit applies when indexing and when querying so both
	// sides see identically truncated text.
	// Default: 512.
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// SetDefaults applies default values.
func (c *EmbedderConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.Model == "" {
		switch c.Provider {
		case "openai":
			c.Model = "text-embedding-3-small"
		default:
			c.Model = "all-minilm:l6-v2"
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 512
	}
}

// Validate checks the configuration for errors.
func (c *EmbedderConfig) Validate() error {
	switch c.Provider {
	case "ollama", "openai", "":
		// Valid
	default:
		return fmt.Errorf("invalid embedder provider: %q", c.Provider)
	}
	if c.Provider == "openai" && c.APIKey == "" {
		return fmt.Errorf("api_key is required for openai embedder")
	}
	return nil
}

// ChunkingConfig configures document chunking.
type ChunkingConfig struct {
	// Size is the target chunk size in characters (default: 1000).
	Size int `yaml:"size,omitempty"`

	// Overlap is the overlap between consecutive chunks in characters
	// (default: 200).
	Overlap int `yaml:"overlap,omitempty"`
}

// SetDefaults applies default values.
func (c *ChunkingConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 1000
	}
	if c.Overlap <= 0 {
		c.Overlap = 200
	}
	if c.Overlap >= c.Size {
		c.Overlap = c.Size / 5
	}
}

// Validate checks the configuration for errors.
func (c *ChunkingConfig) Validate() error {
	if c.Overlap >= c.Size {
		return fmt.Errorf("overlap (%d) must be less than size (%d)", c.Overlap, c.Size)
	}
	return nil
}

// IndexerConfig configures batched indexing.
type IndexerConfig struct {
	// BatchSize is the number of points per upsert batch (default: 32).
	BatchSize int `yaml:"batch_size,omitempty"`

	// MaxRetries is the retry budget per batch (default: 3).
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// SetDefaults applies default values.
func (c *IndexerConfig) SetDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Host to bind (default: 0.0.0.0).
	Host string `yaml:"host,omitempty"`

	// Port to listen on (default: 8000).
	Port int `yaml:"port,omitempty"`
}

// SetDefaults applies default values.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
}

// Config is the root configuration for docsearch.
type Config struct {
	// Collection is the Qdrant collection name. Fixed per process,
	// never per request.
	Collection string `yaml:"collection,omitempty"`

	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Chunking ChunkingConfig `yaml:"chunking,omitempty"`
	Indexer  IndexerConfig  `yaml:"indexer,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

// SetDefaults applies default values to all sections.
func (c *Config) SetDefaults() {
	if c.Collection == "" {
		c.Collection = "documents"
	}
	c.Qdrant.SetDefaults()
	c.Embedder.SetDefaults()
	c.Chunking.SetDefaults()
	c.Indexer.SetDefaults()
	c.Server.SetDefaults()
}

// Validate checks all sections for errors.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("collection name is required")
	}
	if err := c.Qdrant.Validate(); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	if err := c.Embedder.Validate(); err != nil {
		return fmt.Errorf("embedder: %w", err)
	}
	if err := c.Chunking.Validate(); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	return nil
}

// Load reads a YAML config file, expands ${VAR} references against the
// environment, applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// FromEnv builds a config from environment variables only.
// Used when no config file is given. Recognized variables:
// QDRANT_HOST, QDRANT_PORT, QDRANT_API_KEY, COLLECTION_NAME,
// EMBEDDER_PROVIDER, EMBEDDER_BASE_URL, EMBEDDER_API_KEY, EMBEDDER_MODEL.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Collection: os.Getenv("COLLECTION_NAME"),
		Qdrant: QdrantConfig{
			Host:   os.Getenv("QDRANT_HOST"),
			APIKey: os.Getenv("QDRANT_API_KEY"),
		},
		Embedder: EmbedderConfig{
			Provider: os.Getenv("EMBEDDER_PROVIDER"),
			BaseURL:  os.Getenv("EMBEDDER_BASE_URL"),
			APIKey:   os.Getenv("EMBEDDER_API_KEY"),
			Model:    os.Getenv("EMBEDDER_MODEL"),
		},
	}

	if portStr := os.Getenv("QDRANT_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid QDRANT_PORT: %q", portStr)
		}
		cfg.Qdrant.Port = port
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
