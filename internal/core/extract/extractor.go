// Package extract converts raw bytes of supported upload formats into
// normalized text, or directly into row chunks for spreadsheets.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/convert"
	"github.com/olusola-dev/askbase/internal/models"
)

// Extraction is the outcome of extracting one document. Spreadsheets bypass
// the character chunker entirely: PreChunked is set and Rows carries one
// chunk per populated sheet row.
type Extraction struct {
	Text       string
	Rows       []models.Chunk
	PreChunked bool
}

// Extractor converts uploaded bytes to text, with OCR fallback for
// image-only PDFs. Construct with NewExtractor.
type Extractor struct {
	ocr    core.OCRProvider
	logger *zap.Logger

	// Injection seams for tests; default to the real implementations.
	pdfText   func(content []byte) (string, error)
	xlsToXlsx func(ctx context.Context, content []byte) ([]byte, error)
	docText   func(content []byte) (string, error)
}

func NewExtractor(ocr core.OCRProvider, logger *zap.Logger) *Extractor {
	return &Extractor{
		ocr:       ocr,
		logger:    logger,
		pdfText:   extractPDFText,
		xlsToXlsx: convert.XLSToXLSX,
		docText:   extractDocText,
	}
}

// Extract parses content according to the file extension (leading dot,
// case-insensitive). Unknown extensions return ErrUnsupportedFormat;
// unparseable bytes return a ParseError.
func (e *Extractor) Extract(ctx context.Context, content []byte, fileName string) (*Extraction, error) {
	ext := strings.ToLower(extOf(fileName))
	switch ext {
	case ".txt", ".md":
		text, err := extractPlain(content)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		return &Extraction{Text: text}, nil
	case ".docx":
		text, err := extractDOCX(content)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		return &Extraction{Text: text}, nil
	case ".doc":
		text, err := e.docText(content)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		return &Extraction{Text: text}, nil
	case ".pdf":
		text, err := e.extractPDF(ctx, content)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		return &Extraction{Text: text}, nil
	case ".xlsx":
		rows, err := extractSheetRows(content, fileName)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		return &Extraction{Rows: rows, PreChunked: true}, nil
	case ".xls":
		converted, err := e.xlsToXlsx(ctx, content)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		rows, err := extractSheetRows(converted, fileName)
		if err != nil {
			return nil, &core.ParseError{FileName: fileName, Err: err}
		}
		return &Extraction{Rows: rows, PreChunked: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
}

// extractPDF tries the text layer first and falls back to OCR only when the
// direct extraction yields nothing but whitespace (a scanned PDF). OCR
// failure is terminal for the document.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) (string, error) {
	text, err := e.pdfText(content)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	e.logger.Info("pdf has no text layer, falling back to OCR")
	if e.ocr == nil {
		return "", fmt.Errorf("pdf has no text layer and no OCR provider is configured")
	}
	lines, err := e.ocr.DetectDocumentText(ctx, content)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

func extOf(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		return fileName[i:]
	}
	return ""
}
