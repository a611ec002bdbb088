package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/models"
)

// PgvectorStore is the remote backend: collections and chunk vectors live in
// Postgres with the pgvector extension, shared by all app instances.
type PgvectorStore struct {
	db       *sql.DB
	embedder core.EmbeddingProvider
}

var _ core.VectorStore = (*PgvectorStore)(nil)

// NewPgvectorStore wraps an existing database handle. The schema is created
// by the database bootstrap, not here.
func NewPgvectorStore(db *sql.DB, embedder core.EmbeddingProvider) *PgvectorStore {
	return &PgvectorStore{db: db, embedder: embedder}
}

func (s *PgvectorStore) GetOrCreateCollection(ctx context.Context, name string) (core.Collection, error) {
	// ON CONFLICT DO NOTHING keeps concurrent creates for the same account
	// idempotent.
	const q = `INSERT INTO vector_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, name); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	return &pgvectorCollection{db: s.db, name: name, embedder: s.embedder}, nil
}

func (s *PgvectorStore) GetCollection(ctx context.Context, name string) (core.Collection, error) {
	const q = `SELECT 1 FROM vector_collections WHERE name = $1`
	var one int
	err := s.db.QueryRowContext(ctx, q, name).Scan(&one)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", core.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup collection %q: %w", name, err)
	}
	return &pgvectorCollection{db: s.db, name: name, embedder: s.embedder}, nil
}

func (s *PgvectorStore) DeleteCollection(ctx context.Context, name string) error {
	// Chunk rows go with the collection via ON DELETE CASCADE.
	const q = `DELETE FROM vector_collections WHERE name = $1`
	res, err := s.db.ExecContext(ctx, q, name)
	if err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", core.ErrCollectionNotFound, name)
	}
	return nil
}

type pgvectorCollection struct {
	db       *sql.DB
	name     string
	embedder core.EmbeddingProvider
}

func (pc *pgvectorCollection) Add(ctx context.Context, ids []string, texts []string, metadatas []map[string]string) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("add: ids/texts/metadatas length mismatch")
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := pc.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	tx, err := pc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO vector_chunks (id, collection_name, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range ids {
		meta, err := json.Marshal(metadatas[i])
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal metadata: %w", err)
		}
		vec := pgvector.NewVector(vectors[i])
		if _, err := stmt.ExecContext(ctx, ids[i], pc.name, texts[i], meta, vec); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return tx.Commit()
}

func (pc *pgvectorCollection) Query(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	qvec, err := pc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Cosine relevance: 1 - cosine distance, higher is more similar.
	const q = `
		SELECT content, metadata, 1 - (embedding <=> $2) AS relevance
		FROM vector_chunks
		WHERE collection_name = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := pc.db.QueryContext(ctx, q, pc.name, pgvector.NewVector(qvec), k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var out []core.SearchResult
	for rows.Next() {
		var (
			r        core.SearchResult
			metaJSON []byte
		)
		if err := rows.Scan(&r.Content, &metaJSON, &r.Relevance); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &r.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (pc *pgvectorCollection) DeleteBySource(ctx context.Context, source string) error {
	const q = `DELETE FROM vector_chunks WHERE collection_name = $1 AND metadata->>$2 = $3`
	if _, err := pc.db.ExecContext(ctx, q, pc.name, models.MetaSource, source); err != nil {
		return fmt.Errorf("delete by source %q: %w", source, err)
	}
	return nil
}

func (pc *pgvectorCollection) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM vector_chunks WHERE collection_name = $1`
	var n int
	if err := pc.db.QueryRowContext(ctx, q, pc.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}
