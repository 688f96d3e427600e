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

// Package document converts PDF files into retrievable text chunks with
// file-level metadata.
package document

import (
	"sort"
	"strconv"
	"time"
)

// DateFormat is the format used for file timestamps in chunk metadata.
const DateFormat = "2006-01-02"

// FileMetadata carries the file-level fields shared by every chunk of
// one source file.
type FileMetadata struct {
	FileName         string
	FilePath         string
	FileType         string
	FileSize         int64
	CreationDate     string
	LastModifiedDate string
}

// Chunk is one unit of retrievable text plus its metadata.
// Chunks are immutable after creation.
type Chunk struct {
	// Text is the chunk content (never empty).
	Text string

	// File is the file-level metadata, identical for all chunks of
	// the same source file.
	File FileMetadata

	// PageLabel identifies the page the chunk came from. May be
	// non-numeric for documents with roman or custom page labels.
	PageLabel string
}

// FileFailure records one file that could not be processed.
type FileFailure struct {
	Path string
	Err  error
}

// Result is the outcome of processing a directory.
type Result struct {
	// Chunks in file-then-page-then-chunk order.
	Chunks []Chunk

	// Processed is the number of files that yielded chunks.
	Processed int

	// Failures lists files that could not be processed. A non-empty
	// failure list with a non-empty chunk list is a partial success.
	Failures []FileFailure
}

// formatTimestamp renders a file timestamp for chunk metadata.
func formatTimestamp(t time.Time) string {
	return t.Format(DateFormat)
}

// SortPageLabels orders page labels for display: numeric labels sort
// ascending by integer value, non-numeric labels sort after all numeric
// ones in their original encounter order.
func SortPageLabels(labels []string) {
	numericRank := func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil
	}

	sort.SliceStable(labels, func(i, j int) bool {
		ni, iNum := numericRank(labels[i])
		nj, jNum := numericRank(labels[j])
		switch {
		case iNum && jNum:
			return ni < nj
		case iNum:
			return true
		case jNum:
			return false
		default:
			return false // keep encounter order
		}
	})
}
