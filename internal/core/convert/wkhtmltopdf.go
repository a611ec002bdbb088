package convert

import (
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/olusola-dev/askbase/internal/core"
)

// renderHTMLToPDF renders an HTML string to PDF bytes with the headless
// wkhtmltopdf renderer.
func renderHTMLToPDF(html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: wkhtmltopdf (%v)", core.ErrToolMissing, err)
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	out := pdfg.Bytes()
	if len(out) == 0 {
		return nil, fmt.Errorf("render pdf: renderer returned empty output")
	}
	return out, nil
}
