package ask

import (
	"context"
	"time"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// Corpus reads the document snapshot for keyword retrieval.
type Corpus interface {
	ListAll(ctx context.Context) ([]domain.Document, error)
}

// VectorSearcher is the embedding-based retrieval path.
type VectorSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error)
	Ready() bool
}

// KeywordSearcher is the literal-match retrieval path.
type KeywordSearcher interface {
	Search(question string, docs []domain.Document, topK int) []domain.SearchHit
}

// Generator is the external answer generation capability.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userText string, image []byte) (string, error)
}

// Recorder stores answered questions for analytics. Best-effort: a
// recording failure never fails the response.
type Recorder interface {
	Record(ctx context.Context, question, answer string, links []domain.Link,
		hasImage bool, elapsed time.Duration) error
}
