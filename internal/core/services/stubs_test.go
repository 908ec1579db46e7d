package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
)

// stubSource serves a fixed file set.
type stubSource struct {
	files []domain.CorpusFile
	err   error
	calls int
}

func (s *stubSource) Type() string            { return "stub" }
func (s *stubSource) Corpus() domain.CorpusID { return domain.CorpusID{Owner: "acme", Repo: "docs"} }
func (s *stubSource) Close() error            { return nil }
func (s *stubSource) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{}
}

func (s *stubSource) Files(_ context.Context) ([]domain.CorpusFile, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.files, nil
}

func (s *stubSource) Watch(_ context.Context) (<-chan driven.FileChange, error) {
	return nil, domain.ErrSourceUnavailable
}

// stubEmbedder maps keyword presence onto fixed axes so similarity
// rankings are fully deterministic.
type stubEmbedder struct {
	dims       int
	fail       bool
	embedCalls int
	batchCalls int
}

func newStubEmbedder() *stubEmbedder { return &stubEmbedder{dims: 8} }

func (e *stubEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	lower := strings.ToLower(text)
	matched := false
	for i, term := range []string{"alpha", "beta", "gamma"} {
		if strings.Contains(lower, term) {
			v[i] = 1
			matched = true
		}
	}
	if !matched {
		v[e.dims-1] = 1
	}
	return v
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.embedCalls++
	if e.fail {
		return nil, domain.ErrProviderUnavailable
	}
	return e.vector(text), nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	if e.fail {
		return nil, domain.ErrProviderUnavailable
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int              { return e.dims }
func (e *stubEmbedder) ModelName() string            { return "stub-embed" }
func (e *stubEmbedder) Ping(_ context.Context) error { return nil }
func (e *stubEmbedder) Close() error                 { return nil }

// stubCache keeps a single record in memory.
type stubCache struct {
	record  *domain.CacheRecord
	loadErr error
	saveErr error
	saves   int
}

func (c *stubCache) Load(_ context.Context, _ domain.CorpusID) (*domain.CacheRecord, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.record, nil
}

func (c *stubCache) Save(_ context.Context, _ domain.CorpusID, record *domain.CacheRecord) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.record = record
	c.saves++
	return nil
}

func (c *stubCache) Path(_ domain.CorpusID) string { return "stub.json" }

// stubDocStore records snapshot writes.
type stubDocStore struct {
	snapshots map[string]string
	saveCalls int
}

func newStubDocStore() *stubDocStore {
	return &stubDocStore{snapshots: make(map[string]string)}
}

func (d *stubDocStore) SaveFiles(_ context.Context, _ domain.CorpusID, _ []domain.CorpusFile) error {
	d.saveCalls++
	return nil
}

func (d *stubDocStore) GetFile(_ context.Context, _ domain.CorpusID, _ string) (*domain.CorpusFile, error) {
	return nil, domain.ErrNotFound
}

func (d *stubDocStore) ListFiles(_ context.Context, _ domain.CorpusID) ([]domain.CorpusFile, error) {
	return nil, nil
}

func (d *stubDocStore) SaveSnapshot(_ context.Context, _ domain.CorpusID, path, serialized string) error {
	d.snapshots[path] = serialized
	return nil
}

func (d *stubDocStore) GetSnapshot(_ context.Context, _ domain.CorpusID, path string) (string, error) {
	s, ok := d.snapshots[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s, nil
}

func (d *stubDocStore) DeleteCorpus(_ context.Context, _ domain.CorpusID) error { return nil }
func (d *stubDocStore) Close() error                                            { return nil }

// stubInvalidator counts staleness notifications.
type stubInvalidator struct {
	calls int
}

func (i *stubInvalidator) MarkStale() { i.calls++ }

func testFiles() []domain.CorpusFile {
	return []domain.CorpusFile{
		{
			Name:    "guide.md",
			Path:    "docs/guide.md",
			Content: "# Guide\n\n## Alpha\n\nAlpha body text.\n\n## Beta\n\nBeta body text.\n",
		},
		{
			Name:    "notes.md",
			Path:    "docs/notes.md",
			Content: "# Notes\n\n## Gamma\n\nGamma body text.\n",
		},
	}
}
