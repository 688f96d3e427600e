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

// Command docsearch indexes PDF documents into a hybrid vector
// collection and searches them with rank-fused dense plus sparse
// retrieval.
//
// Usage:
//
//	docsearch serve --config config.yaml
//	docsearch index ./docs
//	docsearch search "contract termination clauses"
//	docsearch watch ./docs
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/docsearch/pkg/config"
	"github.com/kadirpekel/docsearch/pkg/document"
	"github.com/kadirpekel/docsearch/pkg/embedder"
	"github.com/kadirpekel/docsearch/pkg/index"
	"github.com/kadirpekel/docsearch/pkg/observability"
	"github.com/kadirpekel/docsearch/pkg/search"
	"github.com/kadirpekel/docsearch/pkg/server"
	"github.com/kadirpekel/docsearch/pkg/vector"
)

// CLI defines the command-line interface.
type CLI struct {
	Version   VersionCmd   `cmd:"" help:"Show version information."`
	Serve     ServeCmd     `cmd:"" help:"Start the HTTP API server."`
	Index     IndexCmd     `cmd:"" help:"Index a directory of PDF files."`
	Search    SearchCmd    `cmd:"" help:"Run a hybrid search query."`
	Documents DocumentsCmd `cmd:"" help:"List indexed documents."`
	Watch     WatchCmd     `cmd:"" help:"Watch a directory and reindex changed PDFs."`
	Schema    SchemaCmd    `cmd:"" help:"Generate JSON Schema for the config file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (text or json)." default:"text"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("docsearch version %s\n", version)
	return nil
}

// pipeline bundles the components shared by every command that talks
// to the vector store.
type pipeline struct {
	cfg       *config.Config
	store     vector.Store
	embedders *embedder.Provider
	processor *document.Processor
	indexer   *index.Indexer
	engine    *search.Engine
}

func (p *pipeline) Close() {
	if err := p.store.Close(); err != nil {
		slog.Warn("Failed to close store", "error", err)
	}
	if err := p.embedders.Dense.Close(); err != nil {
		slog.Warn("Failed to close embedder", "error", err)
	}
}

// buildPipeline loads configuration and wires the full component
// graph. Configuration comes from the config file when one is given,
// otherwise from environment variables.
func buildPipeline(cli *CLI) (*pipeline, error) {
	var cfg *config.Config
	var err error
	if cli.Config != "" {
		cfg, err = config.Load(cli.Config)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	embedders, err := embedder.NewProviderFromConfig(&cfg.Embedder)
	if err != nil {
		return nil, err
	}

	store, err := vector.NewQdrantStore(cfg.Qdrant, cfg.Collection)
	if err != nil {
		embedders.Dense.Close()
		return nil, err
	}

	processor := document.NewProcessor(document.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap))
	indexer := index.NewIndexer(store, embedders, cfg.Indexer)
	engine := search.NewEngine(store, embedders, cfg.Collection)

	return &pipeline{
		cfg:       cfg,
		store:     store,
		embedders: embedders,
		processor: processor,
		indexer:   indexer,
		engine:    engine,
	}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	return ctx, cancel
}

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Port int `help:"Port to listen on (overrides config)." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(cli)
	if err != nil {
		return err
	}
	defer p.Close()

	if c.Port != 0 {
		p.cfg.Server.Port = c.Port
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return err
	}
	observability.SetGlobalMetrics(metrics)

	srv := server.New(p.cfg.Server, p.processor, p.indexer, p.engine, p.store)
	return srv.Start(ctx)
}

func main() {
	_ = config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("docsearch"),
		kong.Description("Hybrid PDF search over a Qdrant collection"),
		kong.UsageOnError(),
	)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
