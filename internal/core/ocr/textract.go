// Package ocr extracts text from scanned documents via AWS Textract.
package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/olusola-dev/askbase/internal/core"
)

const detectTimeout = 60 * time.Second

type TextractOCR struct {
	client *textract.Client
}

var _ core.OCRProvider = (*TextractOCR)(nil)

func NewTextractOCR(cfg aws.Config) *TextractOCR {
	return &TextractOCR{client: textract.NewFromConfig(cfg)}
}

// DetectDocumentText runs synchronous detection on a single document image
// or PDF and returns the detected lines in reading order.
func (t *TextractOCR) DetectDocumentText(ctx context.Context, content []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: content},
	})
	if err != nil {
		return nil, fmt.Errorf("textract detect: %w", err)
	}

	var lines []string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}
	return lines, nil
}
