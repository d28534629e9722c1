package domain

import "context"

// EmbeddingResult holds one embedding vector.
type EmbeddingResult struct {
	Embedding []float32
}

// Embedder vectorizes text into a fixed-dimension embedding.
// Implementations must be deterministic for identical input text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by providers that can verify availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
