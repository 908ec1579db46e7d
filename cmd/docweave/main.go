// Command docweave indexes a markdown corpus and serves semantic
// search, document inspection and edits over it, either directly from
// the command line or through an MCP server.
package main

import (
	"context"
	"os"
	"time"

	"github.com/custodia-labs/docweave/internal/adapters/driven/cache/file"
	configfile "github.com/custodia-labs/docweave/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docweave/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docweave/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docweave/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docweave/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docweave/internal/adapters/driving/cli"
	"github.com/custodia-labs/docweave/internal/connectors"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/core/services"
	"github.com/custodia-labs/docweave/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return err
	}

	source, err := connectors.NewSource(ctx, sourceConfig(cfg))
	if err != nil {
		return err
	}
	defer source.Close() //nolint:errcheck

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	cache, err := file.NewStore("")
	if err != nil {
		return err
	}

	retrievalOpts := []services.Option{
		services.WithDefaultK(cfg.GetInt("retrieval.k")),
		services.WithMinRelevance(cfg.GetFloat("retrieval.min_relevance")),
		services.WithStrictEmbeddings(cfg.GetBool("embedding.strict")),
	}
	documentOpts := []services.DocumentOption{}

	// The document store is an optional persistence layer; when SQLite
	// cannot be opened an in-memory store serves the session instead.
	var store driven.DocumentStore
	if sqliteStore, err := sqlite.NewStore(""); err != nil {
		logger.Warn("SQLite store unavailable, using in-memory store: %v", err)
		store = memory.NewDocumentStore()
	} else {
		store = sqliteStore
	}
	defer store.Close() //nolint:errcheck
	retrievalOpts = append(retrievalOpts, services.WithDocumentStore(store))
	documentOpts = append(documentOpts, services.WithSnapshotStore(store))

	retrieval := services.NewRetrievalService(source, embedder, cache, retrievalOpts...)
	documentOpts = append(documentOpts, services.WithIndexInvalidator(retrieval))
	documents := services.NewDocumentService(source, documentOpts...)

	cli.SetRetrievalService(retrieval)
	cli.SetDocumentService(documents)
	cli.SetConfigStore(cfg)
	cli.SetCorpusSource(source)

	return cli.Execute(version)
}

// sourceConfig maps the config store onto a connector selection.
// Without configuration the current directory is served.
func sourceConfig(cfg driven.ConfigStore) connectors.SourceConfig {
	sourceType := cfg.GetString("source.type")
	if sourceType == "" {
		sourceType = connectors.TypeFilesystem
	}

	root := cfg.GetString("source.root")
	if root == "" {
		root = "."
	}

	return connectors.SourceConfig{
		Type:       sourceType,
		Owner:      cfg.GetString("source.owner"),
		Repo:       cfg.GetString("source.repo"),
		Branch:     cfg.GetString("source.branch"),
		Token:      cfg.GetString("github.token"),
		PathPrefix: cfg.GetString("source.path_prefix"),
		Root:       root,
	}
}

// newEmbedder builds the configured embedding provider. Ollama is the
// default since it needs no credentials.
func newEmbedder(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	timeout := time.Duration(cfg.GetInt("embedding.timeout_seconds")) * time.Second

	switch cfg.GetString("embedding.provider") {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.GetString("embedding.api_key"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Timeout:    timeout,
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
	default:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Timeout:    timeout,
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil
	}
}
