package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/models"
)

// ChromemStore is the embedded backend: collections persist under a local
// directory, suitable for single-node deployments and development.
type ChromemStore struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
}

var _ core.VectorStore = (*ChromemStore)(nil)

// NewChromemStore opens (or creates) a persistent embedded store at path.
// The embedding provider is bound once here and shared by every collection.
func NewChromemStore(path string, embedder core.EmbeddingProvider) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open embedded vector store: %w", err)
	}
	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	return &ChromemStore{db: db, embedFunc: embedFunc}, nil
}

func (s *ChromemStore) GetOrCreateCollection(ctx context.Context, name string) (core.Collection, error) {
	c, err := s.db.GetOrCreateCollection(name, nil, s.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", name, err)
	}
	return &chromemCollection{c: c}, nil
}

func (s *ChromemStore) GetCollection(ctx context.Context, name string) (core.Collection, error) {
	c := s.db.GetCollection(name, s.embedFunc)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", core.ErrCollectionNotFound, name)
	}
	return &chromemCollection{c: c}, nil
}

func (s *ChromemStore) DeleteCollection(ctx context.Context, name string) error {
	if s.db.GetCollection(name, s.embedFunc) == nil {
		return fmt.Errorf("%w: %q", core.ErrCollectionNotFound, name)
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}

type chromemCollection struct {
	c *chromem.Collection
}

func (cc *chromemCollection) Add(ctx context.Context, ids []string, texts []string, metadatas []map[string]string) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("add: ids/texts/metadatas length mismatch")
	}
	docs := make([]chromem.Document, 0, len(ids))
	for i := range ids {
		docs = append(docs, chromem.Document{
			ID:       ids[i],
			Content:  texts[i],
			Metadata: metadatas[i],
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if err := cc.c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func (cc *chromemCollection) Query(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	// chromem rejects nResults larger than the collection size.
	count := cc.c.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	res, err := cc.c.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]core.SearchResult, 0, len(res))
	for _, r := range res {
		out = append(out, core.SearchResult{
			Content:   r.Content,
			Metadata:  r.Metadata,
			Relevance: float64(r.Similarity),
		})
	}
	return out, nil
}

func (cc *chromemCollection) DeleteBySource(ctx context.Context, source string) error {
	err := cc.c.Delete(ctx, map[string]string{models.MetaSource: source}, nil)
	if err != nil {
		return fmt.Errorf("delete by source %q: %w", source, err)
	}
	return nil
}

func (cc *chromemCollection) Count(ctx context.Context) (int, error) {
	return cc.c.Count(), nil
}
