package convert

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
)

func newTestConverter(htmlToPDF func(string) ([]byte, error)) *Converter {
	c := NewConverter(zap.NewNop())
	c.htmlToPDF = htmlToPDF
	return c
}

func captureHTML(into *string) func(string) ([]byte, error) {
	return func(html string) ([]byte, error) {
		*into = html
		return []byte("%PDF-fake"), nil
	}
}

func TestToPDFPassthrough(t *testing.T) {
	c := newTestConverter(func(string) ([]byte, error) {
		t.Fatal("renderer must not run for pdf input")
		return nil, nil
	})

	content := []byte("%PDF-1.7 original")
	got, err := c.ToPDF(context.Background(), content, "Already.PDF")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestToPDFUnsupported(t *testing.T) {
	c := newTestConverter(nil)
	_, err := c.ToPDF(context.Background(), []byte("x"), "archive.tar.gz")
	assert.ErrorIs(t, err, core.ErrUnsupportedConversion)
}

func TestToPDFTextWrapsPre(t *testing.T) {
	var html string
	c := newTestConverter(captureHTML(&html))

	_, err := c.ToPDF(context.Background(), []byte("line <one>\nline two"), "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "line &lt;one&gt;")
}

func TestToPDFTextLenientUTF8(t *testing.T) {
	var html string
	c := newTestConverter(captureHTML(&html))

	_, err := c.ToPDF(context.Background(), []byte{0x68, 0x69, 0xff}, "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, html, "hi�")
}

func TestToPDFMarkdown(t *testing.T) {
	var html string
	c := newTestConverter(captureHTML(&html))

	_, err := c.ToPDF(context.Background(), []byte("# Heading\n\nsome *body*"), "doc.md")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<em>body</em>")
}

func TestToPDFDocxStages(t *testing.T) {
	var html string
	c := newTestConverter(captureHTML(&html))
	c.docxToHTML = func(_ context.Context, inputPath, outDir string) (string, error) {
		p := outDir + "/out.html"
		return p, writeFile(t, p, "<html><body>converted</body></html>")
	}

	got, err := c.ToPDF(context.Background(), []byte("docx bytes"), "report.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), got)
	assert.Contains(t, html, "converted")
}

func TestToPDFDocRunsLibreofficeFirst(t *testing.T) {
	var order []string
	c := newTestConverter(func(string) ([]byte, error) {
		order = append(order, "render")
		return []byte("%PDF-fake"), nil
	})
	c.docToDocx = func(_ context.Context, inputPath, outDir string) (string, error) {
		order = append(order, "libreoffice")
		p := outDir + "/input.docx"
		return p, writeFile(t, p, "docx")
	}
	c.docxToHTML = func(_ context.Context, inputPath, outDir string) (string, error) {
		order = append(order, "pandoc")
		assert.True(t, strings.HasSuffix(inputPath, ".docx"))
		p := outDir + "/out.html"
		return p, writeFile(t, p, "<html></html>")
	}

	_, err := c.ToPDF(context.Background(), []byte("legacy"), "old.doc")
	require.NoError(t, err)
	assert.Equal(t, []string{"libreoffice", "pandoc", "render"}, order)
}

func TestToPDFXlsxTables(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"Name", "City"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"Ada", "London"}))
	_, err := f.NewSheet("Extra")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Extra", "A1", &[]string{"Other"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	var html string
	c := newTestConverter(captureHTML(&html))
	_, err = c.ToPDF(context.Background(), buf.Bytes(), "data.xlsx")
	require.NoError(t, err)

	assert.Contains(t, html, "<th>Name</th>")
	assert.Contains(t, html, "<td>Ada</td>")
	// Sheets after the first start on a new page.
	assert.Contains(t, html, `class="sheet-break"`)
}

func writeFile(t *testing.T, path, content string) error {
	t.Helper()
	return os.WriteFile(path, []byte(content), 0o600)
}
