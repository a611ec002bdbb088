package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	middleware "github.com/olusola-dev/askbase/internal/api/middlewares"
	"github.com/olusola-dev/askbase/internal/config"
	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/vectorstore"
	"github.com/olusola-dev/askbase/internal/models"
)

const maxUploadBytes = 52 << 20 // 52 MB

type DocumentHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	store        core.VectorStore
	dispatcher   core.JobDispatcher
	cfg          *config.Config
	logger       *zap.Logger
}

func NewDocumentHandler(db core.DbClient, obj core.ObjectClient, store core.VectorStore, dispatcher core.JobDispatcher, cfg *config.Config, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		dbclient:     db,
		objectclient: obj,
		store:        store,
		dispatcher:   dispatcher,
		cfg:          cfg,
		logger:       logger,
	}
}

// UploadDocument stages the raw upload, records the document as pending
// and dispatches the conversion job. The converted PDF lands in the final
// bucket and is reported back through the internal callback.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	// Strip any path components before the name touches a storage key.
	cleanName := filepath.Base(header.Filename)
	jobID := uuid.NewString()
	stagingKey := "uploads/" + accountID + "/" + jobID + "/" + cleanName

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadCtx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if _, err := h.objectclient.UploadFile(uploadCtx, h.cfg.StagingBucket, stagingKey, content, contentType); err != nil {
		h.logger.Error("staging upload failed", zap.String("key", stagingKey), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	doc := &models.SourceDocument{
		ID:                   jobID,
		AccountUniqueID:      accountID,
		FileName:             cleanName,
		ContentType:          contentType,
		Status:               models.StatusPending,
		IncludedInSourceData: true,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	if err := h.dbclient.CreateSourceDocument(uploadCtx, doc); err != nil {
		h.logger.Error("document insert failed", zap.String("doc_id", jobID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store document metadata")
		return
	}

	payload, _ := json.Marshal(models.JobRequest{
		JobID:            jobID,
		AccountUniqueID:  accountID,
		StagingBucket:    h.cfg.StagingBucket,
		StagingKey:       stagingKey,
		OriginalFileName: cleanName,
	})
	if err := h.dispatcher.InvokeAsync(r.Context(), h.cfg.ConvertFunction, payload); err != nil {
		h.logger.Error("job dispatch failed", zap.String("job_id", jobID), zap.Error(err))
		_ = h.dbclient.UpdateSourceDocumentStatus(r.Context(), jobID, models.StatusFailed, "dispatch failed")
		writeError(w, http.StatusInternalServerError, "failed to queue processing")
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

// GetDocuments lists every source document the account has uploaded.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())

	docs, err := h.dbclient.ListSourceDocuments(r.Context(), accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []models.SourceDocument{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": docs})
}

type includeRequest struct {
	Included bool `json:"included"`
}

// ToggleInclude flips whether the document participates in source data.
// Taking a document out does not remove already-embedded vectors; that
// happens on the next replace ingestion.
func (h *DocumentHandler) ToggleInclude(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	docID := chi.URLParam(r, "document_id")

	var req includeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	doc, err := h.ownedDocument(r, accountID, docID)
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if err := h.dbclient.SetSourceDocumentIncluded(r.Context(), doc.ID, req.Included); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc.IncludedInSourceData = req.Included
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes the document's vectors, its stored artifact and
// finally the row. Storage deletion is best effort; a dangling S3 object
// is preferable to a row that keeps resurrecting deleted content.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	docID := chi.URLParam(r, "document_id")

	doc, err := h.ownedDocument(r, accountID, docID)
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	col, err := h.store.GetCollection(r.Context(), vectorstore.CollectionName(accountID))
	switch {
	case errors.Is(err, core.ErrCollectionNotFound):
		// Nothing embedded yet.
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	default:
		if err := col.DeleteBySource(r.Context(), doc.FileName); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if doc.StorageKey != "" {
		if err := h.objectclient.DeleteFile(r.Context(), h.cfg.FinalBucket, doc.StorageKey); err != nil {
			h.logger.Warn("artifact delete failed",
				zap.String("doc_id", doc.ID),
				zap.String("key", doc.StorageKey),
				zap.Error(err),
			)
		}
	}

	if err := h.dbclient.DeleteSourceDocument(r.Context(), doc.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": doc.ID})
}

func (h *DocumentHandler) ownedDocument(r *http.Request, accountID, docID string) (*models.SourceDocument, error) {
	doc, err := h.dbclient.GetSourceDocumentByID(r.Context(), docID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.AccountUniqueID != accountID {
		return nil, core.ErrDocumentNotFound
	}
	return doc, nil
}
