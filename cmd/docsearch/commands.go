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

package main

import (
	"fmt"
	"strings"

	"github.com/kadirpekel/docsearch/pkg/index"
	"github.com/kadirpekel/docsearch/pkg/search"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// IndexCmd indexes a directory of PDF files.
type IndexCmd struct {
	Dir string `arg:"" help:"Directory containing PDF files." type:"existingdir"`
}

func (c *IndexCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(cli)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.indexer.SetupCollection(ctx); err != nil {
		return err
	}

	result, err := p.processor.Process(ctx, c.Dir)
	if err != nil {
		return err
	}

	report, err := p.indexer.Index(ctx, result.Chunks)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d files, %d of %d chunks\n",
		result.Processed, report.ChunksIndexed, report.ChunksTotal)
	for _, failure := range result.Failures {
		fmt.Printf("  skipped %s: %v\n", failure.Path, failure.Err)
	}
	if !report.Success() {
		return fmt.Errorf("%d of %d batches failed", report.BatchesFailed, report.BatchesTotal)
	}

	return nil
}

// SearchCmd runs one hybrid search query.
type SearchCmd struct {
	Query     []string `arg:"" help:"Search query."`
	Limit     uint64   `short:"n" help:"Maximum number of results." default:"5"`
	FileName  string   `help:"Restrict results to one source file."`
	PageLabel string   `help:"Restrict results to one page label."`
}

func (c *SearchCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(cli)
	if err != nil {
		return err
	}
	defer p.Close()

	var filter *vector.Filter
	if c.FileName != "" || c.PageLabel != "" {
		filter = &vector.Filter{FileName: c.FileName, PageLabel: c.PageLabel}
	}

	points, err := p.engine.Search(ctx, strings.Join(c.Query, " "), filter, c.Limit)
	if err != nil {
		return err
	}

	if len(points) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, point := range points {
		source := point.Payload.FileName
		if point.Payload.PageLabel != "" {
			source = fmt.Sprintf("%s (page %s)", source, point.Payload.PageLabel)
		}
		fmt.Printf("%d. [%.4f] %s\n%s\n\n", i+1, point.Score, source, point.Payload.Text)
	}

	return nil
}

// DocumentsCmd lists indexed documents.
type DocumentsCmd struct{}

func (c *DocumentsCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(cli)
	if err != nil {
		return err
	}
	defer p.Close()

	summaries, err := search.ListDocuments(ctx, p.store)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}

	for _, doc := range summaries {
		fmt.Printf("%s  %s  %d chunks  pages: %s\n",
			doc.FileName,
			doc.FileSizeHuman,
			doc.ChunkCount,
			strings.Join(doc.PageLabels, ", "))
	}

	return nil
}

// WatchCmd indexes a directory and keeps reindexing changed PDFs.
type WatchCmd struct {
	Dir string `arg:"" help:"Directory to watch." type:"existingdir"`
}

func (c *WatchCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(cli)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.indexer.SetupCollection(ctx); err != nil {
		return err
	}

	// Full pass first so the watcher only has to track changes.
	result, err := p.processor.Process(ctx, c.Dir)
	if err == nil {
		if _, err := p.indexer.Index(ctx, result.Chunks); err != nil {
			return err
		}
	}

	watcher, err := index.NewWatcher(index.WatcherConfig{BasePath: c.Dir}, p.processor, p.indexer)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	<-ctx.Done()
	return nil
}
