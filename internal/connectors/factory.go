// Package connectors provides corpus source implementations for the
// supported source types. Each connector knows how to fetch documents
// from a specific backend (GitHub, local filesystem).
package connectors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docweave/internal/connectors/filesystem"
	"github.com/custodia-labs/docweave/internal/connectors/github"
	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
)

// Source type identifiers.
const (
	TypeGitHub     = "github"
	TypeFilesystem = "filesystem"
)

// SourceConfig selects and configures a corpus source.
type SourceConfig struct {
	// Type is the source type ("github" or "filesystem").
	Type string

	// Owner and Repo identify a GitHub repository.
	Owner string
	Repo  string

	// Branch is the GitHub branch to read. Empty uses the default.
	Branch string

	// Token is the GitHub access token. Empty means unauthenticated.
	Token string

	// PathPrefix restricts a GitHub corpus to one subtree.
	PathPrefix string

	// Root is the directory for filesystem sources.
	Root string
}

// NewSource builds a corpus source from configuration.
func NewSource(ctx context.Context, cfg SourceConfig) (driven.CorpusSource, error) {
	switch cfg.Type {
	case TypeGitHub:
		return github.NewSource(ctx, github.Config{
			Owner:      cfg.Owner,
			Repo:       cfg.Repo,
			Branch:     cfg.Branch,
			Token:      cfg.Token,
			PathPrefix: cfg.PathPrefix,
		})
	case TypeFilesystem:
		return filesystem.NewSource(filesystem.Config{Root: cfg.Root})
	default:
		return nil, fmt.Errorf("unknown source type %q: %w", cfg.Type, domain.ErrInvalidInput)
	}
}
