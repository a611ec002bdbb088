// Package ingestion_engine turns uploaded documents into embedded chunks
// inside each account's vector collection.
package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/extract"
	"github.com/olusola-dev/askbase/internal/core/vectorstore"
	"github.com/olusola-dev/askbase/internal/models"
)

const (
	batchTimeout   = 10 * time.Minute
	docConcurrency = 4
)

// IngestJob schedules one account's pending documents for ingestion.
// Replace drops the existing collection first and re-embeds everything
// the account has opted into source data.
type IngestJob struct {
	AccountUniqueID string
	Replace         bool
}

// IngestReport summarizes one batch run.
type IngestReport struct {
	Processed int
	Failed    int
	Skipped   int
}

// DocumentIngestor runs a bounded worker pool over an in-memory job
// queue. Jobs are per-account batches, serialized per account.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	store     core.VectorStore
	extractor *extract.Extractor
	bucket    string
	logger    *zap.Logger

	jobs  chan IngestJob
	locks accountLocks
}

func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, store core.VectorStore, extractor *extract.Extractor, bucket string, logger *zap.Logger) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, store: store, extractor: extractor,
		bucket: bucket, logger: logger,
		jobs: make(chan IngestJob, 64),
	}
}

// Start launches the worker goroutines reading from the jobs channel.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					i.logger.Info("ingestion worker shutting down", zap.Int("worker", w))
					return
				case job := <-i.jobs:
					i.logger.Info("ingestion batch start",
						zap.Int("worker", w),
						zap.String("account", job.AccountUniqueID),
						zap.Bool("replace", job.Replace),
					)
					report, err := i.IngestAccount(ctx, job.AccountUniqueID, job.Replace)
					if err != nil {
						i.logger.Error("ingestion batch failed",
							zap.String("account", job.AccountUniqueID),
							zap.Error(err),
						)
						continue
					}
					i.logger.Info("ingestion batch done",
						zap.String("account", job.AccountUniqueID),
						zap.Int("processed", report.Processed),
						zap.Int("failed", report.Failed),
						zap.Int("skipped", report.Skipped),
					)
				}
			}
		}(w)
	}
}

// Enqueue schedules an account batch. Blocks when the queue is full.
func (i *DocumentIngestor) Enqueue(job IngestJob) {
	i.jobs <- job
}

// IngestAccount processes every eligible document for the account. A
// document that fails is marked failed and the batch carries on; only
// account-level problems (missing account, collection setup) abort.
func (i *DocumentIngestor) IngestAccount(ctx context.Context, accountUniqueID string, replace bool) (*IngestReport, error) {
	unlock := i.locks.lock(accountUniqueID)
	defer unlock()

	// Fresh context so a cancelled HTTP request cannot abandon a batch
	// halfway through a replace.
	proctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	account, err := i.db.GetAccountByUniqueID(proctx, accountUniqueID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account == nil {
		return nil, core.ErrAccountNotFound
	}

	cfg := models.RetrievalConfig{
		RelevanceScore: account.RelevanceScore,
		KValue:         account.KValue,
		ChunkSize:      account.ChunkSize,
		ChunkOverlap:   account.ChunkOverlap,
	}
	cfg.Normalize()

	name := vectorstore.CollectionName(accountUniqueID)

	if replace {
		if err := i.store.DeleteCollection(proctx, name); err != nil && !errors.Is(err, core.ErrCollectionNotFound) {
			return nil, fmt.Errorf("drop collection: %w", err)
		}
	}

	docs, err := i.db.ListEligibleSourceDocuments(proctx, accountUniqueID, replace)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	report := &IngestReport{}
	if len(docs) == 0 {
		return report, nil
	}

	col, err := i.store.GetOrCreateCollection(proctx, name)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(proctx)
	g.SetLimit(docConcurrency)

	for idx := range docs {
		doc := docs[idx]
		g.Go(func() error {
			skipped, err := i.processDocument(gctx, col, &doc, &cfg)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
			case skipped:
				report.Skipped++
			default:
				report.Processed++
			}
			// Per-document failures never cancel the batch.
			return nil
		})
	}
	_ = g.Wait()

	return report, nil
}

// processDocument embeds one document into the collection. Returns
// skipped=true when extraction yielded no content; the document is still
// marked processed so it is not re-selected forever.
func (i *DocumentIngestor) processDocument(ctx context.Context, col core.Collection, doc *models.SourceDocument, cfg *models.RetrievalConfig) (skipped bool, err error) {
	fail := func(cause error) (bool, error) {
		i.logger.Error("document ingestion failed",
			zap.String("doc_id", doc.ID),
			zap.String("file", doc.FileName),
			zap.Error(cause),
		)
		if dbErr := i.db.UpdateSourceDocumentStatus(ctx, doc.ID, models.StatusFailed, core.Truncate(cause.Error(), 1024)); dbErr != nil {
			i.logger.Error("status update failed", zap.String("doc_id", doc.ID), zap.Error(dbErr))
		}
		return false, cause
	}

	if err := i.db.UpdateSourceDocumentStatus(ctx, doc.ID, models.StatusProcessing, ""); err != nil {
		return false, err
	}

	key := doc.StorageKey
	if key == "" {
		key = doc.AccountUniqueID + "/" + doc.FileName
	}
	content, err := i.obj.GetFile(ctx, i.bucket, key)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", key, err))
	}

	extraction, err := i.extractor.Extract(ctx, content, doc.FileName)
	if err != nil {
		return fail(err)
	}

	var chunks []models.Chunk
	if extraction.PreChunked {
		chunks = extraction.Rows
	} else {
		chunks = SplitText(extraction.Text, cfg.ChunkSize, cfg.ChunkOverlap)
	}

	if len(chunks) == 0 {
		i.logger.Warn("document produced no chunks, marking processed",
			zap.String("doc_id", doc.ID),
			zap.String("file", doc.FileName),
		)
		if err := i.db.MarkSourceDocumentProcessed(ctx, doc.ID); err != nil {
			return false, err
		}
		return true, nil
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	for n, ch := range chunks {
		meta := map[string]string{
			models.MetaSource:   doc.FileName,
			models.MetaFileName: doc.FileName,
		}
		for k, v := range ch.Metadata {
			meta[k] = v
		}
		if !extraction.PreChunked {
			meta[models.MetaStart] = strconv.Itoa(ch.StartIndex)
		}
		ids[n] = uuid.NewString()
		texts[n] = ch.Text
		metadatas[n] = meta
	}

	if err := col.Add(ctx, ids, texts, metadatas); err != nil {
		return fail(fmt.Errorf("store chunks: %w", err))
	}

	if err := i.db.MarkSourceDocumentProcessed(ctx, doc.ID); err != nil {
		return false, err
	}

	i.logger.Info("document ingested",
		zap.String("doc_id", doc.ID),
		zap.String("file", doc.FileName),
		zap.Int("chunks", len(chunks)),
	)
	return false, nil
}
