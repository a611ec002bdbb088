// Package convert normalizes uploaded documents to PDF through an HTML
// intermediate. External tools (libreoffice, pandoc, wkhtmltopdf) run in
// subprocesses under explicit timeouts; every temp artifact is removed on
// all exit paths since the worker runs in space-constrained environments.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
)

// Converter turns an original upload into PDF bytes. Construct with
// NewConverter.
type Converter struct {
	logger *zap.Logger

	// Injection seams for tests.
	docToDocx  func(ctx context.Context, inputPath, outDir string) (string, error)
	docxToHTML func(ctx context.Context, inputPath, outDir string) (string, error)
	htmlToPDF  func(html string) ([]byte, error)
}

func NewConverter(logger *zap.Logger) *Converter {
	return &Converter{
		logger:     logger,
		docToDocx:  libreofficeDocToDocx,
		docxToHTML: pandocDocxToHTML,
		htmlToPDF:  renderHTMLToPDF,
	}
}

// ToPDF converts content according to the original file extension. PDFs pass
// through unchanged; anything without a conversion path fails with
// ErrUnsupportedConversion.
func (c *Converter) ToPDF(ctx context.Context, content []byte, fileName string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return content, nil
	case ".doc", ".docx":
		return c.wordToPDF(ctx, content, fileName, ext)
	case ".txt":
		return c.htmlToPDF(textHTML(lenientUTF8(content)))
	case ".md":
		html, err := markdownHTML(lenientUTF8(content))
		if err != nil {
			return nil, &core.ConversionError{FileName: fileName, Stage: "markdown", Err: err}
		}
		return c.htmlToPDF(html)
	case ".xls", ".xlsx":
		return c.workbookToPDF(ctx, content, fileName, ext)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedConversion, ext)
	}
}

// wordToPDF runs the two-stage path: legacy .doc is first converted to .docx
// with libreoffice, then docx goes through pandoc HTML and the headless PDF
// renderer.
func (c *Converter) wordToPDF(ctx context.Context, content []byte, fileName, ext string) ([]byte, error) {
	workDir, err := os.MkdirTemp("", "askbase-convert-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "input"+ext)
	if err := os.WriteFile(inputPath, content, 0o600); err != nil {
		return nil, fmt.Errorf("write temp input: %w", err)
	}

	if ext == ".doc" {
		c.logger.Info("pre-converting legacy doc to docx", zap.String("file", fileName))
		inputPath, err = c.docToDocx(ctx, inputPath, workDir)
		if err != nil {
			return nil, &core.ConversionError{FileName: fileName, Stage: "libreoffice", Err: err}
		}
	}

	htmlPath, err := c.docxToHTML(ctx, inputPath, workDir)
	if err != nil {
		return nil, &core.ConversionError{FileName: fileName, Stage: "pandoc", Err: err}
	}
	html, err := os.ReadFile(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("read converted html: %w", err)
	}

	pdf, err := c.htmlToPDF(string(html))
	if err != nil {
		return nil, &core.ConversionError{FileName: fileName, Stage: "wkhtmltopdf", Err: err}
	}
	return pdf, nil
}

func (c *Converter) workbookToPDF(ctx context.Context, content []byte, fileName, ext string) ([]byte, error) {
	if ext == ".xls" {
		converted, err := XLSToXLSX(ctx, content)
		if err != nil {
			return nil, &core.ConversionError{FileName: fileName, Stage: "libreoffice", Err: err}
		}
		content = converted
	}
	html, err := workbookHTML(content)
	if err != nil {
		return nil, &core.ConversionError{FileName: fileName, Stage: "workbook", Err: err}
	}
	pdf, err := c.htmlToPDF(html)
	if err != nil {
		return nil, &core.ConversionError{FileName: fileName, Stage: "wkhtmltopdf", Err: err}
	}
	return pdf, nil
}

// lenientUTF8 replaces invalid byte sequences. Unlike ingestion, preview
// conversion should render something rather than reject the upload.
func lenientUTF8(content []byte) string {
	return strings.ToValidUTF8(string(content), "�")
}
