package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"sort"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CorpusSource = (*Source)(nil)

// DefaultMaxFileSize caps fetched file size at 1MB. Larger Markdown
// files are almost always generated artifacts, not documentation.
const DefaultMaxFileSize = 1 << 20

// Config holds settings for a GitHub corpus source.
type Config struct {
	// Owner is the repository owner (required).
	Owner string

	// Repo is the repository name (required).
	Repo string

	// Branch is the branch to read. Empty uses the default branch.
	Branch string

	// Token is a PAT or OAuth access token. Empty means unauthenticated.
	Token string

	// PathPrefix restricts the corpus to one subtree (e.g. "docs/").
	PathPrefix string

	// MaxFileSize caps fetched file size in bytes (default: 1MB).
	MaxFileSize int64
}

// Source serves the Markdown files of one GitHub repository.
type Source struct {
	client *Client
	cfg    Config
}

// NewSource creates a GitHub corpus source.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required: %w", domain.ErrInvalidInput)
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}

	return &Source{
		client: NewClient(ctx, cfg.Token),
		cfg:    cfg,
	}, nil
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return "github"
}

// Corpus returns the corpus identity this source serves.
func (s *Source) Corpus() domain.CorpusID {
	return domain.CorpusID{Owner: s.cfg.Owner, Repo: s.cfg.Repo}
}

// Capabilities returns what this source supports.
func (s *Source) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsRateLimiting: true}
}

// Files fetches the repository's Markdown files, sorted by path.
// One tree API call lists all paths; each matching blob is fetched
// individually under the rate limiter.
func (s *Source) Files(ctx context.Context) ([]domain.CorpusFile, error) {
	branch := s.cfg.Branch
	if branch == "" {
		repo, err := s.client.GetRepository(ctx, s.cfg.Owner, s.cfg.Repo)
		if err != nil {
			return nil, s.wrap(err, "resolve default branch")
		}
		branch = repo.GetDefaultBranch()
	}

	tree, err := s.client.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, branch)
	if err != nil {
		return nil, s.wrap(err, "fetch tree")
	}

	var files []domain.CorpusFile
	for _, entry := range tree.Entries {
		if !s.wantEntry(entry) {
			continue
		}

		content, err := s.fetchBlobContent(ctx, entry.GetSHA())
		if err != nil {
			if IsRateLimited(err) {
				return nil, s.wrap(err, "fetch blob")
			}
			logger.Warn("Skipping unreadable file %s: %v", entry.GetPath(), err)
			continue
		}

		filePath := entry.GetPath()
		files = append(files, domain.CorpusFile{
			Name:    path.Base(filePath),
			Path:    filePath,
			Content: content,
			SourceURL: fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s",
				s.cfg.Owner, s.cfg.Repo, branch, filePath),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	logger.Debug("GitHub %s: %d markdown files on %s", s.Corpus(), len(files), branch)
	return files, nil
}

// Watch is not supported; the GitHub API does not push change events.
func (s *Source) Watch(_ context.Context) (<-chan driven.FileChange, error) {
	return nil, ErrWatchUnsupported
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}

// wantEntry reports whether a tree entry belongs to the corpus.
func (s *Source) wantEntry(entry *gh.TreeEntry) bool {
	if entry.GetType() != "blob" {
		return false
	}
	p := entry.GetPath()
	if !isMarkdown(p) {
		return false
	}
	if s.cfg.PathPrefix != "" && !strings.HasPrefix(p, s.cfg.PathPrefix) {
		return false
	}
	if entry.GetSize() > int(s.cfg.MaxFileSize) {
		return false
	}
	return true
}

// fetchBlobContent fetches a blob and decodes its content.
func (s *Source) fetchBlobContent(ctx context.Context, sha string) (string, error) {
	blob, err := s.client.GetBlob(ctx, s.cfg.Owner, s.cfg.Repo, sha)
	if err != nil {
		return "", err
	}

	if blob.GetEncoding() == "base64" {
		// Remove any whitespace from base64 content
		raw := strings.ReplaceAll(blob.GetContent(), "\n", "")
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return "", fmt.Errorf("decode blob: %w", err)
		}
		return string(decoded), nil
	}

	return blob.GetContent(), nil
}

// wrap maps connector errors onto the domain error taxonomy.
func (s *Source) wrap(err error, op string) error {
	switch {
	case IsRateLimited(err):
		return fmt.Errorf("github %s: %v: %w", op, err, domain.ErrRateLimited)
	case IsNotFound(err):
		return fmt.Errorf("github %s: %v: %w", op, err, domain.ErrNotFound)
	default:
		return fmt.Errorf("github %s: %v: %w", op, err, domain.ErrSourceUnavailable)
	}
}

// isMarkdown reports whether a path names a Markdown document.
func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}
