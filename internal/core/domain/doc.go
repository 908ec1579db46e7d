// Package domain contains the core business types for docweave.
//
// Types here are pure data with no infrastructure dependencies. The corpus
// model (CorpusID, CorpusFile), the retrieval model (Chunk, SearchResult)
// and the cache model (CacheRecord) all live here, together with the
// sentinel errors shared across services and adapters.
package domain
