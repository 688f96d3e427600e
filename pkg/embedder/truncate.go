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
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for token counting,
// truncation and sparse term indices.
const DefaultEncoding = "cl100k_base"

var (
	// Cache encodings to avoid repeated initialization.
	encodingCache = make(map[string]*tiktoken.Tiktoken)
	cacheMu       sync.RWMutex
)

func getEncoding(name string) (*tiktoken.Tiktoken, error) {
	cacheMu.RLock()
	cached, exists := encodingCache[name]
	cacheMu.RUnlock()
	if exists {
		return cached, nil
	}

	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %s: %w", name, err)
	}

	cacheMu.Lock()
	encodingCache[name] = encoding
	cacheMu.Unlock()

	return encoding, nil
}

// Truncator cuts text at a fixed token boundary.
//
// Truncation must be identical on the indexing and query paths;
// a mismatch would bias retrieval. Every embedder in this package
// shares one Truncator per pipeline.
type Truncator struct {
	encoding  *tiktoken.Tiktoken
	maxTokens int
}

// NewTruncator creates a truncator with the given token limit.
func NewTruncator(maxTokens int) (*Truncator, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d", maxTokens)
	}

	encoding, err := getEncoding(DefaultEncoding)
	if err != nil {
		return nil, err
	}

	return &Truncator{encoding: encoding, maxTokens: maxTokens}, nil
}

// Truncate returns text cut to at most the configured number of tokens.
// Text within the limit is returned unchanged.
func (t *Truncator) Truncate(text string) string {
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:t.maxTokens])
}

// CountTokens returns the token count of text.
func (t *Truncator) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// MaxTokens returns the configured token limit.
func (t *Truncator) MaxTokens() int {
	return t.maxTokens
}
