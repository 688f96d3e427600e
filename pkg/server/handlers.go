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

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kadirpekel/docsearch/pkg/document"
	"github.com/kadirpekel/docsearch/pkg/observability"
	"github.com/kadirpekel/docsearch/pkg/search"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 256 << 20 // 256 MiB

type indexResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// DocumentCount is the number of chunks written to the
	// collection, the unit the store counts in.
	DocumentCount int `json:"document_count"`

	FilesIndexed  int      `json:"files_indexed"`
	ChunksIndexed int      `json:"chunks_indexed"`
	FailedFiles   []string `json:"failed_files,omitempty"`
}

type searchRequest struct {
	Query          string         `json:"query"`
	MetadataFilter map[string]any `json:"metadata_filter,omitempty"`
	Limit          uint64         `json:"limit,omitempty"`
}

type searchResponse struct {
	Documents []string `json:"documents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleIndex ingests uploaded PDF files: every part is validated
// before any file is processed, so a request with one bad file indexes
// nothing.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	// Validate the whole batch up front.
	for _, header := range files {
		if !document.IsPDF(header.Filename) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("only PDF files are supported, got %q", header.Filename))
			return
		}
	}

	tempDir, err := os.MkdirTemp("", "docsearch-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stage uploaded files")
		return
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	for _, header := range files {
		if err := saveUpload(header, tempDir); err != nil {
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("failed to stage %q: %v", header.Filename, err))
			return
		}
	}

	result, err := s.processor.Process(ctx, tempDir)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to process documents: %v", err))
		return
	}

	report, err := s.indexer.Index(ctx, result.Chunks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("indexing failed: %v", err))
		return
	}

	observability.GetGlobalMetrics().RecordIndexRun(ctx, result.Processed, report.ChunksIndexed, time.Since(start))

	resp := indexResponse{
		Success:       report.Success() && len(result.Failures) == 0,
		DocumentCount: report.ChunksIndexed,
		FilesIndexed:  result.Processed,
		ChunksIndexed: report.ChunksIndexed,
	}
	for _, failure := range result.Failures {
		resp.FailedFiles = append(resp.FailedFiles, filepath.Base(failure.Path))
	}

	status := http.StatusOK
	switch {
	case !report.Success():
		resp.Message = fmt.Sprintf("indexed %d of %d chunks, %d batches failed",
			report.ChunksIndexed, report.ChunksTotal, report.BatchesFailed)
		status = http.StatusInternalServerError
	case len(result.Failures) > 0:
		resp.Message = fmt.Sprintf("indexed %d files, %d files could not be processed",
			result.Processed, len(result.Failures))
	default:
		resp.Message = fmt.Sprintf("indexed %d files (%d chunks)",
			result.Processed, report.ChunksIndexed)
	}

	writeJSON(w, status, resp)
}

// handleSearch runs one hybrid retrieval query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	filter, err := vector.FilterFromMap(req.MetadataFilter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	documents, err := s.engine.Query(r.Context(), req.Query, filter, req.Limit)
	if err != nil {
		slog.Error("Search request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if documents == nil {
		documents = []string{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Documents: documents})
}

// handleDocuments returns the per-file summary of the collection.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	summaries, err := search.ListDocuments(r.Context(), s.store)
	if err != nil {
		slog.Error("Document listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	if summaries == nil {
		summaries = []search.DocumentSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": summaries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// saveUpload copies one multipart file into the staging directory under
// its original base name.
func saveUpload(header *multipart.FileHeader, dir string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(dir, filepath.Base(header.Filename)))
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	_, err = io.Copy(dst, src)
	return err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
