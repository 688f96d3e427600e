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
	"fmt"
	"sort"

	"github.com/kadirpekel/docsearch/pkg/document"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// previewRunes is the maximum length of a document preview.
const previewRunes = 200

// scrollLimit bounds how many points the summary view reads.
const scrollLimit = 10000

// DocumentSummary is the per-file aggregate view of the collection.
type DocumentSummary struct {
	FileName         string   `json:"file_name"`
	FilePath         string   `json:"file_path"`
	FileType         string   `json:"file_type"`
	FileSize         int64    `json:"file_size"`
	FileSizeHuman    string   `json:"file_size_human"`
	CreationDate     string   `json:"creation_date"`
	LastModifiedDate string   `json:"last_modified_date"`
	PageLabels       []string `json:"page_labels"`
	ChunkCount       int      `json:"chunk_count"`
	Preview          string   `json:"preview"`
}

// ListDocuments reads stored points and aggregates them into one
// summary per source file, sorted by file name. Files indexed more
// than once appear once; their chunks are simply counted together.
func ListDocuments(ctx context.Context, store vector.Store) ([]DocumentSummary, error) {
	points, err := store.Scroll(ctx, scrollLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexed documents: %w", err)
	}

	byFile := make(map[string]*DocumentSummary)
	labelsByFile := make(map[string]map[string]bool)
	labelOrder := make(map[string][]string)

	for _, point := range points {
		p := point.Payload
		key := p.FilePath
		if key == "" {
			key = p.FileName
		}

		summary, ok := byFile[key]
		if !ok {
			summary = &DocumentSummary{
				FileName:         p.FileName,
				FilePath:         p.FilePath,
				FileType:         p.FileType,
				FileSize:         p.FileSize,
				FileSizeHuman:    FormatFileSize(p.FileSize),
				CreationDate:     p.CreationDate,
				LastModifiedDate: p.LastModifiedDate,
				Preview:          truncatePreview(p.Text),
			}
			byFile[key] = summary
			labelsByFile[key] = make(map[string]bool)
		}

		summary.ChunkCount++

		if p.PageLabel != "" && !labelsByFile[key][p.PageLabel] {
			labelsByFile[key][p.PageLabel] = true
			labelOrder[key] = append(labelOrder[key], p.PageLabel)
		}
	}

	summaries := make([]DocumentSummary, 0, len(byFile))
	for key, summary := range byFile {
		labels := labelOrder[key]
		document.SortPageLabels(labels)
		summary.PageLabels = labels
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].FileName < summaries[j].FileName
	})

	return summaries, nil
}

// truncatePreview shortens chunk text to a display preview at a rune
// boundary.
func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}

// FormatFileSize renders a byte count for display.
func FormatFileSize(size int64) string {
	const unit = 1024
	switch {
	case size >= unit*unit:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	case size >= unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
