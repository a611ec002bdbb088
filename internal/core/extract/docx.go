package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the main document body inside a .docx package.
const docxDocumentXMLPath = "word/document.xml"

// wtTag matches <w:t>text</w:t> including attributed forms like
// <w:t xml:space="preserve">.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// paragraphEnd splits the document XML into paragraph segments.
var paragraphEnd = regexp.MustCompile(`</w:p>`)

// extractDOCX reads word/document.xml out of the zip package and
// concatenates paragraph text in document order, newline-joined. Runs within
// a paragraph are concatenated without separators, the way word processors
// store them.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("not a docx package: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("%s not found in package", docxDocumentXMLPath)
	}

	var paragraphs []string
	for _, segment := range paragraphEnd.Split(string(docXML), -1) {
		runs := wtTag.FindAllStringSubmatch(segment, -1)
		if len(runs) == 0 {
			continue
		}
		var b strings.Builder
		for _, r := range runs {
			b.WriteString(unescapeXML(r[1]))
		}
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n"), nil
}

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return xmlUnescaper.Replace(s)
}
