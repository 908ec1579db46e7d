package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

// newTestSource points a source at a fake GitHub API.
func newTestSource(t *testing.T, cfg Config, handler http.Handler) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	src, err := NewSource(context.Background(), cfg)
	require.NoError(t, err)

	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	src.client.gh.BaseURL = base

	// No proactive throttling against the fake API.
	src.client.rateLimiter.bucket = rate.NewLimiter(rate.Inf, 1)
	return src
}

func fakeRepoAPI(t *testing.T) http.Handler {
	t.Helper()
	blobs := map[string]string{
		"sha-guide": "# Guide\n\n## Alpha\n\nBody.\n",
		"sha-notes": "# Notes\n",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/docs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"docs","default_branch":"main"}`)
	})
	mux.HandleFunc("/repos/acme/docs/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"sha":"tree-sha","tree":[
			{"path":"docs/guide.md","type":"blob","sha":"sha-guide","size":100},
			{"path":"README.md","type":"blob","sha":"sha-notes","size":10},
			{"path":"main.go","type":"blob","sha":"sha-go","size":50},
			{"path":"docs","type":"tree","sha":"sha-dir"},
			{"path":"big.md","type":"blob","sha":"sha-big","size":2097152}
		]}`)
	})
	mux.HandleFunc("/repos/acme/docs/git/blobs/", func(w http.ResponseWriter, r *http.Request) {
		sha := r.URL.Path[len("/repos/acme/docs/git/blobs/"):]
		content, ok := blobs[sha]
		if !ok {
			http.NotFound(w, r)
			return
		}
		encoded := base64.StdEncoding.EncodeToString([]byte(content))
		fmt.Fprintf(w, `{"sha":%q,"content":%q,"encoding":"base64"}`, sha, encoded)
	})
	return mux
}

func TestNewSource_RequiresOwnerAndRepo(t *testing.T) {
	_, err := NewSource(context.Background(), Config{Owner: "acme"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewSource(context.Background(), Config{Repo: "docs"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSource_Identity(t *testing.T) {
	src, err := NewSource(context.Background(), Config{Owner: "acme", Repo: "docs"})
	require.NoError(t, err)

	assert.Equal(t, "github", src.Type())
	assert.Equal(t, "acme/docs", src.Corpus().String())
	assert.False(t, src.Capabilities().SupportsWatch)
	assert.True(t, src.Capabilities().SupportsRateLimiting)
}

func TestSource_Files(t *testing.T) {
	src := newTestSource(t, Config{Owner: "acme", Repo: "docs"}, fakeRepoAPI(t))

	files, err := src.Files(context.Background())
	require.NoError(t, err)

	// main.go filtered by extension, docs dir by type, big.md by size.
	require.Len(t, files, 2)
	assert.Equal(t, "README.md", files[0].Path)
	assert.Equal(t, "# Notes\n", files[0].Content)
	assert.Equal(t, "docs/guide.md", files[1].Path)
	assert.Equal(t, "guide.md", files[1].Name)
	assert.Contains(t, files[1].Content, "## Alpha")
	assert.Equal(t, "https://github.com/acme/docs/blob/main/docs/guide.md", files[1].SourceURL)
}

func TestSource_FilesWithExplicitBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/docs/git/trees/release", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha":"tree-sha","tree":[]}`)
	})

	src := newTestSource(t, Config{Owner: "acme", Repo: "docs", Branch: "release"}, mux)

	files, err := src.Files(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSource_FilesPathPrefix(t *testing.T) {
	src := newTestSource(t, Config{Owner: "acme", Repo: "docs", PathPrefix: "docs/"}, fakeRepoAPI(t))

	files, err := src.Files(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "docs/guide.md", files[0].Path)
}

func TestSource_FilesRepoMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	src := newTestSource(t, Config{Owner: "acme", Repo: "gone"}, mux)

	_, err := src.Files(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSource_WatchUnsupported(t *testing.T) {
	src, err := NewSource(context.Background(), Config{Owner: "acme", Repo: "docs"})
	require.NoError(t, err)

	_, err = src.Watch(context.Background())
	assert.ErrorIs(t, err, ErrWatchUnsupported)
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"docs/guide.markdown", true},
		{"page.MDX", true},
		{"main.go", false},
		{"Makefile", false},
		{"md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isMarkdown(tt.path))
		})
	}
}
