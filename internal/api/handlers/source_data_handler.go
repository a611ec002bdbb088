package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	middleware "github.com/olusola-dev/askbase/internal/api/middlewares"
	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/ingestion_engine"
	"github.com/olusola-dev/askbase/internal/core/query_engine"
)

type SourceDataHandler struct {
	ingestor *ingestion_engine.DocumentIngestor
	engine   *query_engine.Engine
	logger   *zap.Logger
}

func NewSourceDataHandler(ingestor *ingestion_engine.DocumentIngestor, engine *query_engine.Engine, logger *zap.Logger) *SourceDataHandler {
	return &SourceDataHandler{ingestor: ingestor, engine: engine, logger: logger}
}

type generateRequest struct {
	Replace bool `json:"replace"`
}

// GenerateSourceData queues the account's pending documents for embedding.
// With replace set, the existing collection is dropped and rebuilt from
// every included document.
func (h *SourceDataHandler) GenerateSourceData(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())

	var req generateRequest
	if r.Body != nil {
		// Body is optional; absence means incremental ingestion.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.ingestor.Enqueue(ingestion_engine.IngestJob{
		AccountUniqueID: accountID,
		Replace:         req.Replace,
	})

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "queued",
		"replace": req.Replace,
	})
}

type queryRequest struct {
	Query string `json:"query"`
}

// QuerySourceData answers a question from the account's embedded source
// data. An empty query is a client error with a fixed message.
func (h *SourceDataHandler) QuerySourceData(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.engine.Answer(r.Context(), accountID, req.Query)
	switch {
	case errors.Is(err, core.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	case errors.Is(err, core.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
		return
	case err != nil:
		h.logger.Error("query failed", zap.String("account", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	// No match carries the sentinel string as the response; an answer
	// nests the generated text with its sources.
	if result.NoMatch {
		writeJSON(w, http.StatusOK, map[string]any{
			"query":    result.Query,
			"response": result.Response,
		})
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query": result.Query,
		"response": map[string]any{
			"query":         result.Query,
			"response_text": result.Response,
			"sources":       sources,
		},
	})
}
