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

// Package server exposes ingestion and retrieval over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kadirpekel/docsearch/pkg/config"
	"github.com/kadirpekel/docsearch/pkg/document"
	"github.com/kadirpekel/docsearch/pkg/index"
	"github.com/kadirpekel/docsearch/pkg/search"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// Server is the HTTP API over the ingestion and retrieval pipeline.
type Server struct {
	cfg        config.ServerConfig
	processor  *document.Processor
	indexer    *index.Indexer
	engine     *search.Engine
	store      vector.Store
	httpServer *http.Server
}

// New creates a server wired to the given pipeline components.
func New(cfg config.ServerConfig, processor *document.Processor, indexer *index.Indexer, engine *search.Engine, store vector.Store) *Server {
	cfg.SetDefaults()

	return &Server{
		cfg:       cfg,
		processor: processor,
		indexer:   indexer,
		engine:    engine,
		store:     store,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	// The API keeps trailing-slash forms as canonical and accepts the
	// bare forms as aliases.
	r.Post("/index/", s.handleIndex)
	r.Post("/index", s.handleIndex)
	r.Post("/search/", s.handleSearch)
	r.Post("/search", s.handleSearch)
	r.Get("/documents/", s.handleDocuments)
	r.Get("/documents", s.handleDocuments)
	r.Get("/health/", s.handleHealth)
	r.Get("/health", s.handleHealth)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// Start ensures the collection exists and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.indexer.SetupCollection(ctx); err != nil {
		return fmt.Errorf("failed to set up collection: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
