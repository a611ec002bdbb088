package convert

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
)

// textHTML wraps plain text in a minimal monospace-preformatted shell so it
// renders reasonably as PDF.
func textHTML(text string) string {
	return fmt.Sprintf(`<html>
  <head><meta charset="UTF-8"></head>
  <body><pre style="white-space: pre-wrap; word-wrap: break-word; font-family: monospace;">%s</pre></body>
</html>`, html.EscapeString(text))
}

// markdownHTML renders markdown to HTML and wraps it in a minimal document
// shell.
func markdownHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return fmt.Sprintf(`<html><head><meta charset="UTF-8"></head><body>%s</body></html>`, buf.String()), nil
}

// workbookHTML renders every sheet of an xlsx workbook as an HTML table:
// bold header row, bordered cells, and a page break before each sheet after
// the first.
func workbookHTML(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString(`<html><head><meta charset="UTF-8"><style>
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #333; padding: 4px 8px; text-align: left; }
th { font-weight: bold; }
.sheet-break { page-break-before: always; }
</style></head><body>`)

	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		class := ""
		if i > 0 {
			class = ` class="sheet-break"`
		}
		fmt.Fprintf(&b, `<h2%s>%s</h2><table>`, class, html.EscapeString(sheet))
		for r, row := range rows {
			tag := "td"
			if r == 0 {
				tag = "th"
			}
			b.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(&b, "<%s>%s</%s>", tag, html.EscapeString(cell), tag)
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</table>")
	}
	b.WriteString("</body></html>")
	return b.String(), nil
}
