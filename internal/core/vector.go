package core

import "context"

// SearchResult is one similarity hit: the stored chunk text, its metadata,
// and a relevance score where higher means more similar.
type SearchResult struct {
	Content   string
	Metadata  map[string]string
	Relevance float64
}

// Collection is one account's isolated namespace of embedded chunks.
type Collection interface {
	// Add upserts entries. ids, texts and metadatas must be equal length;
	// ids are freshly generated per ingestion so retries are safe.
	Add(ctx context.Context, ids []string, texts []string, metadatas []map[string]string) error

	// Query embeds the query text and returns up to k nearest neighbours
	// ordered by descending relevance. An empty collection yields zero
	// results, not an error.
	Query(ctx context.Context, query string, k int) ([]SearchResult, error)

	// DeleteBySource removes all entries whose source metadata matches,
	// used when a single document is removed from an account.
	DeleteBySource(ctx context.Context, source string) error

	Count(ctx context.Context) (int, error)
}

// VectorStore manages per-account collections. The embedding provider is
// injected once at store construction and stays consistent for the life of
// every collection; switching models requires a full replace ingestion.
type VectorStore interface {
	// GetOrCreateCollection is idempotent and safe to call concurrently for
	// the same account.
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)

	// GetCollection returns ErrCollectionNotFound when the collection does
	// not exist; it never creates one.
	GetCollection(ctx context.Context, name string) (Collection, error)

	// DeleteCollection destroys a collection and all its entries. A missing
	// collection reports ErrCollectionNotFound, which replace-mode ingestion
	// tolerates.
	DeleteCollection(ctx context.Context, name string) error
}
