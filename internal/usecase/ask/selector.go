package ask

import (
	"context"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/metrics"
)

// SelectorConfig tunes retrieval and context assembly.
type SelectorConfig struct {
	TopK                int
	SimilarityThreshold float64
	SnippetMaxLen       int
}

// Selector chooses the retrieval engine, applies the relevance threshold,
// and assembles the context bundle. Retrieval is best-effort: any engine
// failure degrades to an empty bundle and is never propagated.
type Selector struct {
	corpus  Corpus
	vector  VectorSearcher
	keyword KeywordSearcher
	cfg     SelectorConfig
	logger  *zap.Logger
}

// NewSelector creates a retrieval selector. vector may be nil.
func NewSelector(
	corpus Corpus,
	vector VectorSearcher,
	keyword KeywordSearcher,
	cfg SelectorConfig,
	logger *zap.Logger,
) *Selector {
	return &Selector{corpus: corpus, vector: vector, keyword: keyword, cfg: cfg, logger: logger}
}

// Retrieve runs one retrieval pass for the question and reports which
// engine ran. The vector engine is preferred when its embedding capability
// is available; otherwise the keyword engine scores a full corpus snapshot.
func (s *Selector) Retrieve(ctx context.Context, question string) (domain.ContextBundle, string) {
	if s.vector != nil && s.vector.Ready() {
		return s.retrieveVector(ctx, question), "vector"
	}
	return s.retrieveKeyword(ctx, question), "keyword"
}

func (s *Selector) retrieveVector(ctx context.Context, question string) domain.ContextBundle {
	hits, err := s.vector.Search(ctx, question, s.cfg.TopK)
	if err != nil {
		metrics.RetrievalTotal.WithLabelValues("vector", "error").Inc()
		s.logger.Warn("Vector search failed, continuing without context", zap.Error(err))
		return domain.ContextBundle{}
	}
	metrics.RetrievalTotal.WithLabelValues("vector", "success").Inc()

	// Strictly above the threshold: a hit at exactly 0.3 is excluded.
	return s.bundle(hits, func(score float64) bool {
		return score > s.cfg.SimilarityThreshold
	})
}

func (s *Selector) retrieveKeyword(ctx context.Context, question string) domain.ContextBundle {
	docs, err := s.corpus.ListAll(ctx)
	if err != nil {
		metrics.RetrievalTotal.WithLabelValues("keyword", "error").Inc()
		s.logger.Warn("Corpus snapshot failed, continuing without context", zap.Error(err))
		return domain.ContextBundle{}
	}

	hits := s.keyword.Search(question, docs, s.cfg.TopK)
	metrics.RetrievalTotal.WithLabelValues("keyword", "success").Inc()

	return s.bundle(hits, func(score float64) bool {
		return score > 0
	})
}

func (s *Selector) bundle(hits []domain.SearchHit, relevant func(float64) bool) domain.ContextBundle {
	var out domain.ContextBundle
	for _, hit := range hits {
		if !relevant(hit.Score) {
			continue
		}
		out.Entries = append(out.Entries, domain.ContextEntry{
			Title:   hit.Document.Title,
			URL:     hit.Document.URL,
			Snippet: truncate(hit.Document.Body, s.cfg.SnippetMaxLen),
		})
		out.Links = append(out.Links, domain.Link{
			URL:   hit.Document.URL,
			Title: hit.Document.Title,
		})
	}
	return out
}

// truncate caps s at max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
