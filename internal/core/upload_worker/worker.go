// Package upload_worker executes upload-conversion jobs: it pulls the
// staged original from object storage, normalizes it to PDF, stores the
// final artifact and reports the outcome through the job callback.
package upload_worker

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/convert"
	"github.com/olusola-dev/askbase/internal/models"
)

const callbackTimeout = 30 * time.Second

type Worker struct {
	obj         core.ObjectClient
	converter   *convert.Converter
	finalBucket string
	callbackURL string
	internalKey string
	logger      *zap.Logger
	httpClient  *http.Client
}

func NewWorker(obj core.ObjectClient, converter *convert.Converter, finalBucket, callbackURL, internalKey string, logger *zap.Logger) *Worker {
	return &Worker{
		obj:         obj,
		converter:   converter,
		finalBucket: finalBucket,
		callbackURL: callbackURL,
		internalKey: internalKey,
		logger:      logger,
		httpClient:  &http.Client{Timeout: callbackTimeout},
	}
}

// Handle runs one job end to end. The error return is for the dispatcher's
// log; the authoritative outcome always travels through the callback.
func (w *Worker) Handle(ctx context.Context, payload []byte) error {
	var req models.JobRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decode job payload: %w", err)
	}

	result := w.run(ctx, &req)

	if err := w.reportResult(ctx, result); err != nil {
		// With no callback the API row stays in processing forever, so
		// this is the loudest log line the worker has.
		w.logger.Error("job callback failed",
			zap.String("job_id", req.JobID),
			zap.String("status", result.Status),
			zap.Error(err),
		)
		return err
	}

	if result.Status == models.JobFailed {
		return fmt.Errorf("job %s failed: %s", req.JobID, result.ErrorMessage)
	}
	return nil
}

func (w *Worker) run(ctx context.Context, req *models.JobRequest) *models.JobResult {
	fail := func(err error) *models.JobResult {
		return &models.JobResult{
			JobID:        req.JobID,
			Status:       models.JobFailed,
			ErrorMessage: core.Truncate(err.Error(), 1024),
		}
	}

	// The staged original is scratch space; remove it however the job ends.
	defer func() {
		cleanCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := w.obj.DeleteFile(cleanCtx, req.StagingBucket, req.StagingKey); err != nil {
			w.logger.Warn("staging cleanup failed",
				zap.String("job_id", req.JobID),
				zap.String("key", req.StagingKey),
				zap.Error(err),
			)
		}
	}()

	original, err := w.obj.GetFile(ctx, req.StagingBucket, req.StagingKey)
	if err != nil {
		return fail(fmt.Errorf("fetch staged upload: %w", err))
	}

	pdf, err := w.converter.ToPDF(ctx, original, req.OriginalFileName)
	if err != nil {
		return fail(err)
	}

	fileName := finalFileName(req.OriginalFileName)
	finalKey := req.AccountUniqueID + "/" + fileName

	url, err := w.obj.UploadFile(ctx, w.finalBucket, finalKey, pdf, "application/pdf")
	if err != nil {
		return fail(fmt.Errorf("upload final artifact: %w", err))
	}

	w.logger.Info("job converted",
		zap.String("job_id", req.JobID),
		zap.String("final_key", finalKey),
	)

	return &models.JobResult{
		JobID:    req.JobID,
		Status:   models.JobCompleted,
		FinalKey: finalKey,
		FinalURL: url,
		FileName: fileName,
	}
}

func (w *Worker) reportResult(ctx context.Context, result *models.JobResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	ctxCb, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctxCb, http.MethodPost, w.callbackURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Internal-API-Key", w.internalKey)

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned %s", resp.Status)
	}
	return nil
}

// finalFileName builds "{base}_{random hex}.pdf", lowercased with spaces
// collapsed to underscores so the key is URL-safe.
func finalFileName(original string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	base = strings.ToLower(base)
	base = strings.ReplaceAll(base, " ", "_")

	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s_%s.pdf", base, hex.EncodeToString(buf))
}
