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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfPage is the extracted text of one PDF page.
type pdfPage struct {
	Label string
	Text  string
}

// extractPDF parses a PDF file and returns its pages and file metadata.
// Pages that fail text extraction are logged and skipped; the file as a
// whole fails only when it cannot be opened or parsed, or when no page
// yields any text.
func extractPDF(ctx context.Context, path string) ([]pdfPage, FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, FileMetadata{}, fmt.Errorf("failed to stat PDF file: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, FileMetadata{}, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, FileMetadata{}, fmt.Errorf("failed to parse PDF: %w", err)
	}

	meta := FileMetadata{
		FileName: filepath.Base(path),
		FilePath: path,
		FileType: "application/pdf",
		FileSize: info.Size(),
		// Creation time is not portably available from the
		// filesystem; fall back to the modification time.
		CreationDate:     formatTimestamp(info.ModTime()),
		LastModifiedDate: formatTimestamp(info.ModTime()),
	}

	var pages []pdfPage
	totalPages := reader.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, FileMetadata{}, ctx.Err()
		default:
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("Failed to extract page text",
				"file", meta.FileName,
				"page", pageNum,
				"error", err)
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, pdfPage{
			Label: strconv.Itoa(pageNum),
			Text:  text,
		})
	}

	if len(pages) == 0 {
		return nil, FileMetadata{}, fmt.Errorf("no extractable text in %s", meta.FileName)
	}

	return pages, meta, nil
}

// IsPDF reports whether the path has a .pdf suffix (case-insensitive).
func IsPDF(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}
