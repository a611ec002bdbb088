package core

import "context"

// EmbeddingProvider produces fixed-length vectors for texts. All vectors in
// one collection must come from the same provider/model.
type EmbeddingProvider interface {
	// EmbedTexts embeds document chunks in one batched request.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider generates a completion for an assembled prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// OCRProvider extracts line-level text from a scanned document image or
// image-only PDF. Used as the fallback when direct text extraction yields
// nothing.
type OCRProvider interface {
	DetectDocumentText(ctx context.Context, content []byte) ([]string, error)
}
