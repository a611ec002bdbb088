package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/olusola-dev/askbase/internal/config"
	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the underlying pool for the pgvector-backed vector store,
// which shares this connection.
func (c *DatabaseClient) DB() *sql.DB {
	return c.db
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) GetAccountByUniqueID(ctx context.Context, accountUniqueID string) (*models.Account, error) {
	const q = `
		SELECT id, account_unique_id, account_organisation, relevance_score, k_value,
		       chunk_size, chunk_overlap, created_at, updated_at
		FROM accounts WHERE account_unique_id = $1
	`
	var a models.Account
	err := c.db.QueryRowContext(ctx, q, accountUniqueID).Scan(
		&a.ID, &a.AccountUniqueID, &a.Organisation, &a.RelevanceScore, &a.KValue,
		&a.ChunkSize, &a.ChunkOverlap, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *DatabaseClient) GetRetrievalConfig(ctx context.Context, accountUniqueID string) (*models.RetrievalConfig, error) {
	const q = `
		SELECT relevance_score, k_value, chunk_size, chunk_overlap
		FROM accounts WHERE account_unique_id = $1
	`
	var rc models.RetrievalConfig
	err := c.db.QueryRowContext(ctx, q, accountUniqueID).Scan(
		&rc.RelevanceScore, &rc.KValue, &rc.ChunkSize, &rc.ChunkOverlap,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (c *DatabaseClient) CreateSourceDocument(ctx context.Context, doc *models.SourceDocument) error {
	if doc == nil {
		return errors.New("nil source document")
	}
	const q = `
		INSERT INTO source_documents
			(id, account_unique_id, file_name, storage_key, content_type, status,
			 error_message, included_in_source_data, processed_to_source_data,
			 created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()), COALESCE($11, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.AccountUniqueID, doc.FileName, doc.StorageKey, doc.ContentType,
		doc.Status, doc.ErrorMessage, doc.IncludedInSourceData, doc.ProcessedToSourceData,
		doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetSourceDocumentByID(ctx context.Context, id string) (*models.SourceDocument, error) {
	const q = `
		SELECT id, account_unique_id, file_name, storage_key, content_type, status,
		       error_message, included_in_source_data, processed_to_source_data,
		       created_at, updated_at
		FROM source_documents WHERE id = $1
	`
	var d models.SourceDocument
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.AccountUniqueID, &d.FileName, &d.StorageKey, &d.ContentType, &d.Status,
		&d.ErrorMessage, &d.IncludedInSourceData, &d.ProcessedToSourceData,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListSourceDocuments(ctx context.Context, accountUniqueID string) ([]models.SourceDocument, error) {
	const q = `
		SELECT id, account_unique_id, file_name, storage_key, content_type, status,
		       error_message, included_in_source_data, processed_to_source_data,
		       created_at, updated_at
		FROM source_documents
		WHERE account_unique_id = $1
		ORDER BY created_at DESC
	`
	return c.querySourceDocuments(ctx, q, accountUniqueID)
}

func (c *DatabaseClient) ListEligibleSourceDocuments(ctx context.Context, accountUniqueID string, includeProcessed bool) ([]models.SourceDocument, error) {
	const q = `
		SELECT id, account_unique_id, file_name, storage_key, content_type, status,
		       error_message, included_in_source_data, processed_to_source_data,
		       created_at, updated_at
		FROM source_documents
		WHERE account_unique_id = $1
		  AND included_in_source_data = TRUE
		  AND ($2 OR processed_to_source_data = FALSE)
		ORDER BY created_at ASC
	`
	return c.querySourceDocuments(ctx, q, accountUniqueID, includeProcessed)
}

func (c *DatabaseClient) querySourceDocuments(ctx context.Context, q string, args ...any) ([]models.SourceDocument, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SourceDocument
	for rows.Next() {
		var d models.SourceDocument
		if err := rows.Scan(
			&d.ID, &d.AccountUniqueID, &d.FileName, &d.StorageKey, &d.ContentType, &d.Status,
			&d.ErrorMessage, &d.IncludedInSourceData, &d.ProcessedToSourceData,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateSourceDocumentStatus(ctx context.Context, id string, status string, errorMessage string) error {
	const q = `
		UPDATE source_documents
		SET status = $2, error_message = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status, errorMessage)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("source document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) MarkSourceDocumentProcessed(ctx context.Context, id string) error {
	const q = `
		UPDATE source_documents
		SET processed_to_source_data = TRUE, status = $2, error_message = '', updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, models.StatusCompleted)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("source document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) SetSourceDocumentIncluded(ctx context.Context, id string, included bool) error {
	const q = `
		UPDATE source_documents
		SET included_in_source_data = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, included)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("source document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) FinalizeSourceDocument(ctx context.Context, id string, storageKey string, fileName string) error {
	const q = `
		UPDATE source_documents
		SET storage_key = $2, file_name = $3, status = $4, error_message = '', updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, storageKey, fileName, models.StatusCompleted)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("source document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteSourceDocument(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM source_documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("source document not found: %s", id)
	}
	return nil
}
