package ask

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/metrics"
)

// Service runs the full question pipeline: retrieve context, compose an
// answer, rank links, record the exchange.
type Service struct {
	selector *Selector
	composer *Composer
	recorder Recorder
	maxLinks int
	logger   *zap.Logger
}

// NewService wires the pipeline. recorder may be nil to skip history.
func NewService(selector *Selector, composer *Composer, recorder Recorder, maxLinks int, logger *zap.Logger) *Service {
	if maxLinks <= 0 {
		maxLinks = 3
	}
	return &Service{
		selector: selector,
		composer: composer,
		recorder: recorder,
		maxLinks: maxLinks,
		logger:   logger,
	}
}

// Answer resolves a student question, optionally with an attached image.
// The result is always well formed: a non-empty answer string and a link
// slice capped at the configured maximum.
func (s *Service) Answer(ctx context.Context, question string, image []byte) (domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.AnswerResult{}, domain.ErrEmptyQuestion
	}

	start := time.Now()

	bundle, engine := s.selector.Retrieve(ctx, question)

	answer, outcome := s.composer.Compose(ctx, question, image, bundle)
	metrics.QuestionsTotal.WithLabelValues(string(outcome)).Inc()

	var links []domain.Link
	if outcome != OutcomeError {
		links = RankLinks(bundle.Links, question, answer)
		if len(links) > s.maxLinks {
			links = links[:s.maxLinks]
		}
	}
	if links == nil {
		links = []domain.Link{}
	}

	elapsed := time.Since(start)
	s.logger.Info("Question answered",
		zap.String("engine", engine),
		zap.String("outcome", string(outcome)),
		zap.Int("context_entries", len(bundle.Entries)),
		zap.Int("links", len(links)),
		zap.Bool("has_image", len(image) > 0),
		zap.Duration("elapsed", elapsed),
	)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, question, answer, links, len(image) > 0, elapsed); err != nil {
			s.logger.Warn("Failed to record question history", zap.Error(err))
		}
	}

	return domain.AnswerResult{Answer: answer, Links: links}, nil
}
