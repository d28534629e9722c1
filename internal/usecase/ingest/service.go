package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// Service stores scraped documents and feeds them to the vector index
// incrementally. Indexing is best-effort: a stored document that misses
// the index (EmbeddingID stays -1) is picked up by the next full rebuild.
type Service struct {
	corpus  Corpus
	indexer Indexer
	logger  *zap.Logger
}

// New creates an ingest service. indexer may be nil when the vector path
// is not configured.
func New(corpus Corpus, indexer Indexer, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, indexer: indexer, logger: logger}
}

// Ingest validates and stores a document, then appends it to the vector
// index when one is available. Returns the stored document with its
// assigned ID and, when indexed, its vector position.
func (s *Service) Ingest(ctx context.Context, doc domain.Document) (domain.Document, error) {
	if err := validate(&doc); err != nil {
		return domain.Document{}, err
	}

	doc.EmbeddingID = -1
	if doc.ScrapedAt.IsZero() {
		doc.ScrapedAt = time.Now().UTC()
	}

	if _, err := s.corpus.Insert(ctx, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("insert document: %w", err)
	}

	if s.indexer == nil || !s.indexer.Ready() {
		return doc, nil
	}

	position, err := s.indexer.Add(ctx, doc)
	if err != nil {
		s.logger.Warn("Document stored but not indexed",
			zap.Int64("doc_id", doc.ID),
			zap.Error(err),
		)
		return doc, nil
	}
	if err := s.corpus.SetEmbeddingID(ctx, doc.ID, position); err != nil {
		s.logger.Warn("Indexed document without persisted position",
			zap.Int64("doc_id", doc.ID),
			zap.Int64("position", position),
			zap.Error(err),
		)
		return doc, nil
	}

	doc.EmbeddingID = position
	return doc, nil
}

func validate(doc *domain.Document) error {
	doc.URL = strings.TrimSpace(doc.URL)
	doc.Title = strings.TrimSpace(doc.Title)
	doc.Body = strings.TrimSpace(doc.Body)

	switch {
	case doc.URL == "":
		return fmt.Errorf("url is required: %w", domain.ErrInvalidDocument)
	case doc.Title == "":
		return fmt.Errorf("title is required: %w", domain.ErrInvalidDocument)
	case doc.Body == "":
		return fmt.Errorf("content is required: %w", domain.ErrInvalidDocument)
	}

	if doc.Category == "" {
		doc.Category = domain.CategoryCourse
	}
	if doc.Category != domain.CategoryCourse && doc.Category != domain.CategoryForum {
		return fmt.Errorf("unknown category %q: %w", doc.Category, domain.ErrInvalidDocument)
	}
	return nil
}
