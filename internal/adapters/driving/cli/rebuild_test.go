package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
)

func TestRebuildCmd_PrintsStats(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{
		stats: driving.IndexStats{Chunks: 12, Files: 3},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"rebuild"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Indexed 12 chunks from 3 documents.")
	assert.NotContains(t, buf.String(), "placeholder")
}

func TestRebuildCmd_WarnsOnPlaceholders(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{
		stats: driving.IndexStats{Chunks: 12, Files: 3, Placeholders: 2},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"rebuild"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "2 chunks carry placeholder embeddings")
}

func TestRebuildCmd_AlreadyRunning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{err: domain.ErrRebuildInProgress}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"rebuild"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "already running")
}

func TestStatusCmd_PrintsIndexState(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retrievalService = &mockRetrievalService{
		stats: driving.IndexStats{Chunks: 7, Files: 2, ContentHash: "abc123"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Chunks:       7")
	assert.Contains(t, buf.String(), "Documents:    2")
	assert.Contains(t, buf.String(), "abc123")
}

func TestRebuildCmd_WatchUnsupportedSource(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	oldSource := corpusSource
	corpusSource = &mockCorpusSource{}
	defer func() {
		corpusSource = oldSource
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"rebuild", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
		rebuildWatch = false
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "do not support watching")
}

func TestRebuildCmd_WatchClosedChannelReturns(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	changes := make(chan driven.FileChange)
	close(changes)

	oldSource := corpusSource
	corpusSource = &mockCorpusSource{
		caps:    driven.SourceCapabilities{SupportsWatch: true},
		changes: changes,
	}
	defer func() {
		corpusSource = oldSource
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"rebuild", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
		rebuildWatch = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Watching for changes")
}

func TestRebuildCmd_ServiceNotConfigured(t *testing.T) {
	oldService := retrievalService
	retrievalService = nil
	defer func() {
		retrievalService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"rebuild"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}
