package ingestion_engine

import (
	"strings"

	"github.com/olusola-dev/askbase/internal/models"
)

// SplitText slices text into fixed-size rune windows with the configured
// overlap. The window advances by size-overlap runes each step and the
// last window is truncated at the end of the text, so concatenating each
// chunk minus its leading overlap reconstructs the input exactly.
//
// Whitespace-only input produces no chunks. overlap must be smaller than
// size; RetrievalConfig.Normalize enforces that before we get here.
func SplitText(text string, size, overlap int) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		size = models.DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	total := len(runes)
	step := size - overlap

	var chunks []models.Chunk
	for start := 0; ; start += step {
		end := start + size
		if end > total {
			end = total
		}
		chunks = append(chunks, models.Chunk{
			Text:       string(runes[start:end]),
			StartIndex: start,
		})
		if end == total {
			break
		}
	}
	return chunks
}
