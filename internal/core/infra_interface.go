package core

import (
	"context"

	"github.com/olusola-dev/askbase/internal/models"
)

// DbClient defines all persistence operations the pipelines need. It
// abstracts Postgres so higher layers never depend on a specific DB.
// Lookups return (nil, nil) when the row does not exist; callers map that
// to the domain not-found errors.
type DbClient interface {
	GetAccountByUniqueID(ctx context.Context, accountUniqueID string) (*models.Account, error)
	GetRetrievalConfig(ctx context.Context, accountUniqueID string) (*models.RetrievalConfig, error)

	CreateSourceDocument(ctx context.Context, doc *models.SourceDocument) error
	GetSourceDocumentByID(ctx context.Context, id string) (*models.SourceDocument, error)
	ListSourceDocuments(ctx context.Context, accountUniqueID string) ([]models.SourceDocument, error)

	// ListEligibleSourceDocuments returns documents opted into source data.
	// With includeProcessed=false only unprocessed documents are returned;
	// replace-mode ingestion passes true to re-process everything included.
	ListEligibleSourceDocuments(ctx context.Context, accountUniqueID string, includeProcessed bool) ([]models.SourceDocument, error)

	UpdateSourceDocumentStatus(ctx context.Context, id string, status string, errorMessage string) error
	MarkSourceDocumentProcessed(ctx context.Context, id string) error
	SetSourceDocumentIncluded(ctx context.Context, id string, included bool) error

	// FinalizeSourceDocument records the converted artifact location reported
	// by the upload worker callback and flips the status to completed.
	FinalizeSourceDocument(ctx context.Context, id string, storageKey string, fileName string) error

	DeleteSourceDocument(ctx context.Context, id string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any compatible object
// storage. Keys are always "{account_unique_id}/{file_name}".
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}

// JobDispatcher triggers background work fire-and-forget. The invoked worker
// reports back through the job result callback endpoint, not through the
// dispatcher.
type JobDispatcher interface {
	InvokeAsync(ctx context.Context, functionName string, payload []byte) error
}
