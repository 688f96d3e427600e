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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process_EmptyDirectory(t *testing.T) {
	p := NewProcessor(nil)

	_, err := p.Process(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF documents")
}

func TestProcessor_Process_NonPDFsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b,c"), 0o644))

	p := NewProcessor(nil)
	_, err := p.Process(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF documents")
}

func TestProcessor_Process_MissingDirectory(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestProcessor_Process_AllFilesFail(t *testing.T) {
	// A .pdf suffix with garbage content must fail extraction, and
	// with no surviving file the aggregate call errors.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a real pdf"), 0o644))

	p := NewProcessor(nil)
	_, err := p.Process(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process any document")
}

func TestProcessor_Process_PartialFailure(t *testing.T) {
	// One parseable file next to one corrupt file: the good file's
	// chunks come back and the corrupt file is reported, not dropped.
	dir := t.TempDir()
	writePDFFixture(t, filepath.Join(dir, "good.pdf"), "quarterly report summary")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a real pdf"), 0o644))

	p := NewProcessor(nil)
	result, err := p.Process(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Path, "broken.pdf")
	assert.Error(t, result.Failures[0].Err)

	require.NotEmpty(t, result.Chunks)
	for _, chunk := range result.Chunks {
		assert.Equal(t, "good.pdf", chunk.File.FileName)
		assert.Contains(t, chunk.Text, "quarterly report summary")
	}
}

func TestProcessor_ProcessFile_ValidPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	writePDFFixture(t, path, "contract termination clauses")

	p := NewProcessor(nil)
	chunks, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	chunk := chunks[0]
	assert.Contains(t, chunk.Text, "contract termination clauses")
	assert.Equal(t, "report.pdf", chunk.File.FileName)
	assert.Equal(t, "application/pdf", chunk.File.FileType)
	assert.Equal(t, "1", chunk.PageLabel)
	assert.Greater(t, chunk.File.FileSize, int64(0))
	assert.NotEmpty(t, chunk.File.LastModifiedDate)
}

func TestProcessor_ProcessFile_RejectsNonPDF(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.ProcessFile(context.Background(), "notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestProcessor_Process_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(nil)
	_, err := p.Process(ctx, dir)
	assert.Error(t, err)
}
