package ingest

import (
	"context"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// Corpus stores documents and their vector-index positions.
type Corpus interface {
	Insert(ctx context.Context, doc *domain.Document) (bool, error)
	SetEmbeddingID(ctx context.Context, docID, embeddingID int64) error
}

// Indexer appends documents to the vector index.
type Indexer interface {
	Add(ctx context.Context, doc domain.Document) (int64, error)
	Ready() bool
}
