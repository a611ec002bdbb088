package extract

import (
	"fmt"
	"unicode/utf8"
)

// extractPlain decodes content as UTF-8. Invalid byte sequences fail the
// document rather than being silently replaced; the upload-conversion path
// is the lenient one, not ingestion.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("invalid utf-8 byte sequence")
	}
	return string(content), nil
}
