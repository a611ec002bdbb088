package extract

import (
	"bytes"
	"fmt"

	"code.sajari.com/docconv"
)

// extractDocText handles the legacy binary .doc format, which has no native
// Go parser. docconv shells out to its conversion tool in an isolated
// subprocess; an empty body with no error still means the file produced no
// usable text.
func extractDocText(content []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(content), "application/msword", false)
	if err != nil {
		return "", fmt.Errorf("doc conversion: %w", err)
	}
	return res.Body, nil
}
