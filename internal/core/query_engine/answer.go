// Package query_engine answers questions against an account's embedded
// source data.
package query_engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/vectorstore"
	"github.com/olusola-dev/askbase/internal/models"
)

// promptTemplate mirrors the retrieval prompt the product shipped with;
// answers must come from the retrieved context alone.
const promptTemplate = `
Answer the question based only on the following context:

%s

---

Answer the question based on the above context: %s
`

const contextSeparator = "\n\n---\n\n"

// AnswerResult is the outcome of one query. When NoMatch is set, Response
// holds the fixed no-results sentinel and Sources is empty.
type AnswerResult struct {
	Query    string
	Response string
	Sources  []string
	NoMatch  bool
}

type Engine struct {
	db     core.DbClient
	store  core.VectorStore
	llm    core.LLMProvider
	logger *zap.Logger
}

func NewEngine(db core.DbClient, store core.VectorStore, llm core.LLMProvider, logger *zap.Logger) *Engine {
	return &Engine{db: db, store: store, llm: llm, logger: logger}
}

// Answer retrieves the account's nearest chunks and asks the model to
// answer from them. A missing collection, zero hits, or a best hit below
// the account's relevance threshold all produce the no-match result
// without calling the model.
func (e *Engine) Answer(ctx context.Context, accountUniqueID, query string) (*AnswerResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}

	cfg, err := e.db.GetRetrievalConfig(ctx, accountUniqueID)
	if err != nil {
		return nil, fmt.Errorf("load retrieval config: %w", err)
	}
	if cfg == nil {
		return nil, core.ErrAccountNotFound
	}
	cfg.Normalize()

	col, err := e.store.GetCollection(ctx, vectorstore.CollectionName(accountUniqueID))
	if err != nil {
		if errors.Is(err, core.ErrCollectionNotFound) {
			return noMatch(query), nil
		}
		return nil, fmt.Errorf("open collection: %w", err)
	}

	results, err := col.Query(ctx, query, cfg.KValue)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	if len(results) == 0 || results[0].Relevance < cfg.RelevanceScore {
		if len(results) > 0 {
			e.logger.Info("best match below relevance threshold",
				zap.String("account", accountUniqueID),
				zap.Float64("relevance", results[0].Relevance),
				zap.Float64("threshold", cfg.RelevanceScore),
			)
		}
		return noMatch(query), nil
	}

	contents := make([]string, len(results))
	for n, r := range results {
		contents[n] = r.Content
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contents, contextSeparator), query)

	response, err := e.llm.Generate(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &AnswerResult{
		Query:    query,
		Response: response,
		Sources:  dedupeSources(results),
	}, nil
}

func noMatch(query string) *AnswerResult {
	return &AnswerResult{
		Query:    query,
		Response: "Unable to find matching results for: " + query,
		NoMatch:  true,
	}
}

// dedupeSources collects each hit's source in first-occurrence order.
func dedupeSources(results []core.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	var out []string
	for _, r := range results {
		src := r.Metadata[models.MetaSource]
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
