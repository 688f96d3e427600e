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

package index

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kadirpekel/docsearch/pkg/document"
)

// Watcher watches a directory for PDF changes and reindexes changed
// files as they settle.
type Watcher struct {
	watcher       *fsnotify.Watcher
	basePath      string
	processor     *document.Processor
	indexer       *Indexer
	debounceDelay time.Duration

	mu         sync.Mutex
	isWatching bool
	cancel     context.CancelFunc
}

// WatcherConfig configures the directory watcher.
type WatcherConfig struct {
	BasePath      string
	DebounceDelay time.Duration // delay before reindexing a changed file (default: 500ms)
}

// NewWatcher creates a watcher that reindexes with the given processor
// and indexer.
func NewWatcher(cfg WatcherConfig, processor *document.Processor, indexer *Indexer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:       fsWatcher,
		basePath:      cfg.BasePath,
		processor:     processor,
		indexer:       indexer,
		debounceDelay: debounce,
	}, nil
}

// Start begins watching. It returns immediately; events are processed
// on a background goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isWatching {
		return nil
	}

	if err := w.watcher.Add(w.basePath); err != nil {
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.isWatching = true

	go w.watchEvents(ctx)

	slog.Info("Started directory watcher", "path", w.basePath)

	return nil
}

// Stop stops watching for changes.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isWatching {
		return nil
	}

	w.cancel()
	w.isWatching = false

	if err := w.watcher.Close(); err != nil {
		return err
	}

	slog.Info("Stopped directory watcher", "path", w.basePath)

	return nil
}

// watchEvents coalesces rapid events per file and reindexes files once
// their writes settle.
func (w *Watcher) watchEvents(ctx context.Context) {
	var pendingMu sync.Mutex
	pending := make(map[string]struct{})
	var timer *time.Timer

	flush := func() {
		pendingMu.Lock()
		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}
		pending = make(map[string]struct{})
		pendingMu.Unlock()

		for _, path := range paths {
			w.reindexFile(ctx, path)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !document.IsPDF(event.Name) {
				continue
			}

			pendingMu.Lock()
			pending[event.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceDelay, flush)
			pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "path", w.basePath, "error", err)
		}
	}
}

// reindexFile processes and indexes a single changed file. Failures are
// logged, not fatal; the watcher keeps running.
func (w *Watcher) reindexFile(ctx context.Context, path string) {
	slog.Info("Reindexing changed file", "path", path)

	chunks, err := w.processor.ProcessFile(ctx, path)
	if err != nil {
		slog.Error("Failed to process changed file", "path", path, "error", err)
		return
	}

	report, err := w.indexer.Index(ctx, chunks)
	if err != nil {
		slog.Error("Failed to index changed file", "path", path, "error", err)
		return
	}
	if !report.Success() {
		slog.Warn("Changed file indexed partially",
			"path", path,
			"chunks_indexed", report.ChunksIndexed,
			"chunks_total", report.ChunksTotal)
	}
}
