package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

var testCorpus = domain.CorpusID{Owner: "acme", Repo: "docs"}

func testStore(t *testing.T) *DocumentStore {
	t.Helper()
	store := NewDocumentStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDocumentStore_SaveAndListFiles(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	err := store.SaveFiles(ctx, testCorpus, []domain.CorpusFile{
		{Name: "notes.md", Path: "docs/notes.md"},
		{Name: "guide.md", Path: "docs/guide.md"},
	})
	require.NoError(t, err)

	files, err := store.ListFiles(ctx, testCorpus)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "docs/guide.md", files[0].Path)
	assert.Equal(t, "docs/notes.md", files[1].Path)
}

func TestDocumentStore_SaveFilesReplaces(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveFiles(ctx, testCorpus, []domain.CorpusFile{
		{Name: "old.md", Path: "old.md"},
	}))
	require.NoError(t, store.SaveFiles(ctx, testCorpus, []domain.CorpusFile{
		{Name: "new.md", Path: "new.md"},
	}))

	files, err := store.ListFiles(ctx, testCorpus)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.md", files[0].Path)
}

func TestDocumentStore_GetFile(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveFiles(ctx, testCorpus, []domain.CorpusFile{
		{Name: "guide.md", Path: "docs/guide.md", Content: "# Guide\n"},
	}))

	byName, err := store.GetFile(ctx, testCorpus, "guide.md")
	require.NoError(t, err)
	assert.Equal(t, "# Guide\n", byName.Content)

	byPath, err := store.GetFile(ctx, testCorpus, "docs/guide.md")
	require.NoError(t, err)
	assert.Equal(t, "docs/guide.md", byPath.Path)

	_, err = store.GetFile(ctx, testCorpus, "missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_CorpusIsolation(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	other := domain.CorpusID{Owner: "acme", Repo: "wiki"}

	require.NoError(t, store.SaveFiles(ctx, testCorpus, []domain.CorpusFile{
		{Name: "guide.md", Path: "guide.md"},
	}))

	files, err := store.ListFiles(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = store.GetFile(ctx, other, "guide.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Snapshots(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.GetSnapshot(ctx, testCorpus, "guide.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveSnapshot(ctx, testCorpus, "guide.md", "# Guide\n"))
	require.NoError(t, store.SaveSnapshot(ctx, testCorpus, "guide.md", "# Guide v2\n"))

	snapshot, err := store.GetSnapshot(ctx, testCorpus, "guide.md")
	require.NoError(t, err)
	assert.Equal(t, "# Guide v2\n", snapshot)
}

func TestDocumentStore_DeleteCorpus(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveFiles(ctx, testCorpus, []domain.CorpusFile{
		{Name: "guide.md", Path: "guide.md"},
	}))
	require.NoError(t, store.SaveSnapshot(ctx, testCorpus, "guide.md", "# Guide\n"))

	require.NoError(t, store.DeleteCorpus(ctx, testCorpus))

	files, err := store.ListFiles(ctx, testCorpus)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = store.GetSnapshot(ctx, testCorpus, "guide.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
