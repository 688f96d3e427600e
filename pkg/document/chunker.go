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

package document

import (
	"strings"
	"unicode"
)

// Chunker splits page text into overlapping pieces.
//
// Overlap preserves context at chunk boundaries, which matters for
// retrieval: a sentence cut in half at a boundary is present in full in
// at least one of the two adjacent chunks.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given size and overlap, both in
// characters. Invalid values fall back to 1000/200.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split divides text into chunks of at most the configured size, each
// overlapping the previous by the configured amount. Boundaries prefer
// whitespace so words are not cut mid-way. Whitespace-only input yields
// no chunks.
func (c *Chunker) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= c.size {
		return []string{trimmed}
	}

	var chunks []string
	step := c.size - c.overlap

	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Back off to the nearest whitespace so words stay whole.
		split := end
		for split > start+step && !unicode.IsSpace(runes[split]) {
			split--
		}
		if split == start+step {
			split = end // no whitespace found, hard cut
		}

		chunk := strings.TrimSpace(string(runes[start:split]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
