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

package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/docsearch/pkg/vector"
)

func summaryPoint(file, path, label, text string) vector.ScoredPoint {
	return vector.ScoredPoint{
		Payload: vector.Payload{
			Text:      text,
			FileName:  file,
			FilePath:  path,
			FileType:  "application/pdf",
			FileSize:  4096,
			PageLabel: label,
		},
	}
}

func TestListDocuments(t *testing.T) {
	t.Run("empty store yields empty list", func(t *testing.T) {
		summaries, err := ListDocuments(context.Background(), &queryStore{})
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("chunks aggregate per file", func(t *testing.T) {
		store := &queryStore{results: []vector.ScoredPoint{
			summaryPoint("b.pdf", "/docs/b.pdf", "1", "b first chunk"),
			summaryPoint("a.pdf", "/docs/a.pdf", "1", "a first chunk"),
			summaryPoint("b.pdf", "/docs/b.pdf", "2", "b second chunk"),
			summaryPoint("b.pdf", "/docs/b.pdf", "2", "b third chunk"),
		}}

		summaries, err := ListDocuments(context.Background(), store)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		// Sorted by file name.
		assert.Equal(t, "a.pdf", summaries[0].FileName)
		assert.Equal(t, "b.pdf", summaries[1].FileName)

		b := summaries[1]
		assert.Equal(t, 3, b.ChunkCount)
		assert.Equal(t, []string{"1", "2"}, b.PageLabels)
		assert.Equal(t, "b first chunk", b.Preview)
		assert.Equal(t, "4.0 KB", b.FileSizeHuman)
	})

	t.Run("page labels sort numerically with non-numeric last", func(t *testing.T) {
		store := &queryStore{results: []vector.ScoredPoint{
			summaryPoint("a.pdf", "/a.pdf", "10", "x"),
			summaryPoint("a.pdf", "/a.pdf", "iv", "x"),
			summaryPoint("a.pdf", "/a.pdf", "2", "x"),
		}}

		summaries, err := ListDocuments(context.Background(), store)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, []string{"2", "10", "iv"}, summaries[0].PageLabels)
	})

	t.Run("long preview is truncated at a rune boundary", func(t *testing.T) {
		long := strings.Repeat("ü", 300)
		store := &queryStore{results: []vector.ScoredPoint{
			summaryPoint("a.pdf", "/a.pdf", "1", long),
		}}

		summaries, err := ListDocuments(context.Background(), store)
		require.NoError(t, err)
		require.Len(t, summaries, 1)

		preview := summaries[0].Preview
		assert.True(t, strings.HasSuffix(preview, "..."))
		assert.Equal(t, previewRunes+3, len([]rune(preview)))
	})
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
