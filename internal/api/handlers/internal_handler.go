package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/models"
)

// InternalHandler receives worker callbacks. Routes using it sit behind
// the internal API key middleware, never JWT.
type InternalHandler struct {
	dbclient core.DbClient
	logger   *zap.Logger
}

func NewInternalHandler(db core.DbClient, logger *zap.Logger) *InternalHandler {
	return &InternalHandler{dbclient: db, logger: logger}
}

// FileProcessed finalizes or fails the document a conversion job was
// dispatched for. The job ID doubles as the document ID.
func (h *InternalHandler) FileProcessed(w http.ResponseWriter, r *http.Request) {
	var result models.JobResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if result.JobID == "" {
		writeError(w, http.StatusBadRequest, "missing job_id")
		return
	}

	doc, err := h.dbclient.GetSourceDocumentByID(r.Context(), result.JobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	switch result.Status {
	case models.JobCompleted:
		fileName := result.FileName
		if fileName == "" {
			fileName = doc.FileName
		}
		if err := h.dbclient.FinalizeSourceDocument(r.Context(), doc.ID, result.FinalKey, fileName); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.logger.Info("job finalized",
			zap.String("job_id", result.JobID),
			zap.String("final_key", result.FinalKey),
		)
	case models.JobFailed:
		if err := h.dbclient.UpdateSourceDocumentStatus(r.Context(), doc.ID, models.StatusFailed, core.Truncate(result.ErrorMessage, 1024)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.logger.Warn("job failed",
			zap.String("job_id", result.JobID),
			zap.String("error", result.ErrorMessage),
		)
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
