package core

import (
	"errors"
	"fmt"
)

// Domain conditions callers branch on explicitly. These are distinct from
// transport failures, which surface as wrapped errors from the underlying
// clients.
var (
	// ErrUnsupportedFormat means the file extension has no extractor.
	// User-correctable; surfaced as a rejected upload.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnsupportedConversion means the extension has no PDF conversion path.
	ErrUnsupportedConversion = errors.New("unsupported for pdf conversion")

	// ErrToolMissing means a required external binary (pandoc, libreoffice,
	// wkhtmltopdf) is absent. Deployment fault; fail fast and loudly.
	ErrToolMissing = errors.New("required conversion tool not found")

	// ErrCollectionNotFound reports a missing vector collection, distinct
	// from the vector store being unreachable.
	ErrCollectionNotFound = errors.New("vector collection not found")

	// ErrDocumentNotFound reports a missing source document row.
	ErrDocumentNotFound = errors.New("source document not found")

	// ErrAccountNotFound reports an unknown account unique id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmptyQuery is returned before any store access when the query
	// string is empty.
	ErrEmptyQuery = errors.New("no query provided")
)

// ParseError wraps a failure to parse a specific file's bytes. It is recorded
// on the source document and never aborts a batch.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConversionError wraps a failed document conversion (corrupt input, tool
// timeout, tool exit without producing output).
type ConversionError struct {
	FileName string
	Stage    string // e.g. "libreoffice", "pandoc", "wkhtmltopdf"
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s (%s): %v", e.FileName, e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Truncate caps an error message for persistence, matching the worker
// callback contract.
func Truncate(msg string, max int) string {
	if len(msg) <= max {
		return msg
	}
	return msg[:max]
}
