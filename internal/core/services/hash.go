package services

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

// ContentHash computes the whole-corpus content hash: SHA-256 over the
// concatenation of path + ":" + content for every file, in the order
// provided. It is a pure function of its input sequence, so reordering
// the same files changes the hash. Callers that need order independence
// should hash a sorted snapshot (see ContentHashSorted).
func ContentHash(files []domain.CorpusFile) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.Path))
		h.Write([]byte(":"))
		h.Write([]byte(f.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHashSorted hashes the files sorted by path, removing the order
// sensitivity of ContentHash. This is the canonical corpus hash used
// for cache validation: re-ordering alone never invalidates a cache.
func ContentHashSorted(files []domain.CorpusFile) string {
	sorted := append([]domain.CorpusFile(nil), files...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})
	return ContentHash(sorted)
}
