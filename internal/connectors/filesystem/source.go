// Package filesystem provides a corpus source over a local directory
// tree. It supports change watching via fsnotify, which the GitHub
// source cannot offer.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CorpusSource = (*Source)(nil)

// DefaultOwner is the corpus owner used for local directories.
const DefaultOwner = "local"

// Config holds settings for a filesystem corpus source.
type Config struct {
	// Root is the directory to serve (required).
	Root string

	// Owner overrides the corpus owner (default: "local").
	Owner string

	// Name overrides the corpus name (default: base name of Root).
	Name string
}

// Source serves the Markdown files under one directory.
type Source struct {
	root    string
	corpus  domain.CorpusID
	watcher *fsnotify.Watcher
}

// NewSource creates a filesystem corpus source rooted at cfg.Root.
func NewSource(cfg Config) (*Source, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("filesystem: root is required: %w", domain.ErrInvalidInput)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: %v: %w", err, domain.ErrSourceUnavailable)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filesystem: %s is not a directory: %w", root, domain.ErrInvalidInput)
	}

	owner := cfg.Owner
	if owner == "" {
		owner = DefaultOwner
	}
	name := cfg.Name
	if name == "" {
		name = filepath.Base(root)
	}

	return &Source{
		root:   root,
		corpus: domain.CorpusID{Owner: owner, Repo: name},
	}, nil
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return "filesystem"
}

// Corpus returns the corpus identity this source serves.
func (s *Source) Corpus() domain.CorpusID {
	return s.corpus
}

// Capabilities returns what this source supports.
func (s *Source) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsWatch: true}
}

// Files walks the root and returns all Markdown files, sorted by their
// slash-separated relative paths.
func (s *Source) Files(ctx context.Context) ([]domain.CorpusFile, error) {
	var files []domain.CorpusFile

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(path) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable file %s: %v", path, err)
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, domain.CorpusFile{
			Name:      filepath.Base(path),
			Path:      filepath.ToSlash(rel),
			Content:   string(content),
			SourceURL: "file://" + path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filesystem: walk %s: %w", s.root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Watch emits a change event for every Markdown file created, written
// or removed under the root. New subdirectories are watched as they
// appear. The channel closes when ctx is cancelled.
func (s *Source) Watch(ctx context.Context) (<-chan driven.FileChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem: create watcher: %w", err)
	}
	s.watcher = watcher

	// Watch the root and every existing subdirectory.
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != s.root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("filesystem: watch %s: %w", s.root, err)
	}

	changes := make(chan driven.FileChange)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(ctx, watcher, event, changes)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// handleEvent translates one fsnotify event into a file change.
func (s *Source) handleEvent(
	ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, changes chan<- driven.FileChange,
) {
	// Newly created directories need their own watch.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("Watch %s: %v", event.Name, err)
			}
			return
		}
	}

	if !isMarkdown(event.Name) {
		return
	}
	rel, err := filepath.Rel(s.root, event.Name)
	if err != nil {
		return
	}

	var changeType driven.FileChangeType
	switch {
	case event.Op.Has(fsnotify.Create):
		changeType = driven.FileCreated
	case event.Op.Has(fsnotify.Write):
		changeType = driven.FileUpdated
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		changeType = driven.FileDeleted
	default:
		return
	}

	select {
	case changes <- driven.FileChange{Type: changeType, Path: filepath.ToSlash(rel)}:
	case <-ctx.Done():
	}
}

// Close stops watching, if a watcher is active.
func (s *Source) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// isMarkdown reports whether a path names a Markdown document.
func isMarkdown(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}
