package models

import (
	"time"
)

// Processing status of a SourceDocument. Transitions are
// pending -> processing -> completed | failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Account represents a tenant. All source documents and vector entries
// belong to exactly one account, keyed by AccountUniqueID.
type Account struct {
	ID              string    `db:"id" json:"id"`
	AccountUniqueID string    `db:"account_unique_id" json:"account_unique_id"`
	Organisation    string    `db:"account_organisation" json:"account_organisation"`
	RelevanceScore  float64   `db:"relevance_score" json:"relevance_score"`
	KValue          int       `db:"k_value" json:"k_value"`
	ChunkSize       int       `db:"chunk_size" json:"chunk_size"`
	ChunkOverlap    int       `db:"chunk_overlap" json:"chunk_overlap"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// RetrievalConfig holds the per-account tunables read at ingestion time
// (chunk size/overlap) and query time (threshold, k).
type RetrievalConfig struct {
	RelevanceScore float64
	KValue         int
	ChunkSize      int
	ChunkOverlap   int
}

// Defaults applied when an account row carries zero values.
const (
	DefaultRelevanceScore = 0.7
	DefaultKValue         = 3
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 500
)

// Normalize fills missing values with defaults and enforces overlap < size.
func (c *RetrievalConfig) Normalize() {
	if c.RelevanceScore <= 0 || c.RelevanceScore > 1 {
		c.RelevanceScore = DefaultRelevanceScore
	}
	if c.KValue <= 0 {
		c.KValue = DefaultKValue
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 2
	}
}

// SourceDocument represents one uploaded artifact. The two booleans are
// independent: IncludedInSourceData is the user opting the document into
// retrieval, ProcessedToSourceData records that ingestion has embedded it.
type SourceDocument struct {
	ID                    string    `db:"id" json:"id"`
	AccountUniqueID       string    `db:"account_unique_id" json:"account_unique_id"`
	FileName              string    `db:"file_name" json:"file_name"`
	StorageKey            string    `db:"storage_key" json:"storage_key"`
	ContentType           string    `db:"content_type" json:"content_type"`
	Status                string    `db:"status" json:"status"`
	ErrorMessage          string    `db:"error_message" json:"error_message,omitempty"`
	IncludedInSourceData  bool      `db:"included_in_source_data" json:"included_in_source_data"`
	ProcessedToSourceData bool      `db:"processed_to_source_data" json:"processed_to_source_data"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Chunk is the ephemeral unit produced by the chunker (or directly by the
// spreadsheet row path). Chunks are never persisted outside the vector
// collection.
//
// StartIndex is the chunk's rune offset within the source text, monotonically
// increasing across a document's chunks. Spreadsheet rows carry sheet/row
// metadata instead of a meaningful offset.
type Chunk struct {
	Text       string
	StartIndex int
	Metadata   map[string]string
}

// Metadata keys attached to every stored chunk.
const (
	MetaSource   = "source"
	MetaFileName = "file_name"
	MetaSheet    = "sheet"
	MetaRow      = "row"
	MetaStart    = "start_index"
)

// JobRequest is the payload dispatched to a background conversion worker.
type JobRequest struct {
	JobID            string `json:"job_id"`
	AccountUniqueID  string `json:"account_unique_id"`
	StagingBucket    string `json:"staging_bucket"`
	StagingKey       string `json:"staging_key"`
	OriginalFileName string `json:"original_filename"`
}

// JobResult is the callback payload a worker reports when it finishes.
// FinalKey/FinalURL are set on COMPLETED, ErrorMessage (truncated) on FAILED.
type JobResult struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"` // COMPLETED | FAILED
	FinalKey     string `json:"final_key,omitempty"`
	FinalURL     string `json:"final_url,omitempty"`
	FileName     string `json:"final_unique_filename,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Job result statuses reported by background workers.
const (
	JobCompleted = "COMPLETED"
	JobFailed    = "FAILED"
)
