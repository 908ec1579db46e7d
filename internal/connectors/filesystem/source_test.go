package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewSource_Validation(t *testing.T) {
	_, err := NewSource(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewSource(Config{Root: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestSource_Identity(t *testing.T) {
	dir := t.TempDir()
	src, err := NewSource(Config{Root: dir})
	require.NoError(t, err)

	assert.Equal(t, "filesystem", src.Type())
	assert.Equal(t, DefaultOwner, src.Corpus().Owner)
	assert.Equal(t, filepath.Base(dir), src.Corpus().Repo)
	assert.True(t, src.Capabilities().SupportsWatch)
}

func TestSource_Files(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# Readme\n")
	writeFile(t, dir, "docs/guide.md", "# Guide\n")
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, ".hidden/secret.md", "# Secret\n")

	src, err := NewSource(Config{Root: dir})
	require.NoError(t, err)

	files, err := src.Files(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "README.md", files[0].Path)
	assert.Equal(t, "# Readme\n", files[0].Content)
	assert.Equal(t, "docs/guide.md", files[1].Path)
	assert.Equal(t, "guide.md", files[1].Name)
	assert.Contains(t, files[0].SourceURL, "file://")
}

func TestSource_FilesEmptyDir(t *testing.T) {
	src, err := NewSource(Config{Root: t.TempDir()})
	require.NoError(t, err)

	files, err := src.Files(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func waitForChange(t *testing.T, changes <-chan driven.FileChange) driven.FileChange {
	t.Helper()
	select {
	case change := <-changes:
		return change
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file change")
		return driven.FileChange{}
	}
}

func TestSource_WatchCreate(t *testing.T) {
	dir := t.TempDir()
	src, err := NewSource(Config{Root: dir})
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "new.md", "# New\n")

	change := waitForChange(t, changes)
	assert.Equal(t, "new.md", change.Path)
	assert.Contains(t, []driven.FileChangeType{driven.FileCreated, driven.FileUpdated}, change.Type)
}

func TestSource_WatchIgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	src, err := NewSource(Config{Root: dir})
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "ignored.txt", "text\n")
	writeFile(t, dir, "seen.md", "# Seen\n")

	change := waitForChange(t, changes)
	assert.Equal(t, "seen.md", change.Path)
}

func TestSource_WatchDelete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doomed.md", "# Doomed\n")

	src, err := NewSource(Config{Root: dir})
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "doomed.md")))

	change := waitForChange(t, changes)
	assert.Equal(t, "doomed.md", change.Path)
	assert.Equal(t, driven.FileDeleted, change.Type)
}

func TestSource_WatchClosesOnCancel(t *testing.T) {
	src, err := NewSource(Config{Root: t.TempDir()})
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-changes:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}
