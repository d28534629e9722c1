// Package history records answered questions and aggregates usage
// statistics for the stats endpoint.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/db"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

const (
	recordKeyPrefix = domain.KeyPrefix + "qa:"
	totalKey        = domain.KeyPrefix + "qa:stats:total"
	withImageKey    = domain.KeyPrefix + "qa:stats:with_image"
	respTimeSumKey  = domain.KeyPrefix + "qa:stats:resp_time_sum"
)

// store is the consumer interface for the history store (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	IncrByFloat(ctx context.Context, key string, val float64) error
}

// Stats aggregates answered-question counters.
type Stats struct {
	TotalQuestions      int64   `json:"total_questions"`
	AverageResponseTime float64 `json:"average_response_time"`
	QuestionsWithImages int64   `json:"questions_with_images"`
}

// Store persists question/answer records and stats counters.
type Store struct {
	store store
}

// New creates a history store.
func New(s store) *Store {
	return &Store{store: s}
}

// Record stores one answered question and bumps the stats counters.
func (h *Store) Record(
	ctx context.Context,
	question, answer string,
	links []domain.Link,
	hasImage bool,
	elapsed time.Duration,
) error {
	id, err := h.store.IncrBy(ctx, totalKey, 1)
	if err != nil {
		return fmt.Errorf("increment question count: %w", err)
	}
	if hasImage {
		if _, err := h.store.IncrBy(ctx, withImageKey, 1); err != nil {
			return fmt.Errorf("increment image count: %w", err)
		}
	}
	if err := h.store.IncrByFloat(ctx, respTimeSumKey, elapsed.Seconds()); err != nil {
		return fmt.Errorf("add response time: %w", err)
	}

	linksJSON, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("marshal links: %w", err)
	}

	fields := map[string]string{
		"question":      question,
		"answer":        answer,
		"links":         string(linksJSON),
		"has_image":     strconv.FormatBool(hasImage),
		"response_time": strconv.FormatFloat(elapsed.Seconds(), 'f', -1, 64),
		"created_at":    time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.store.HSet(ctx, recordKey(id), fields); err != nil {
		return fmt.Errorf("store record %d: %w", id, err)
	}
	return nil
}

// Stats returns the aggregated counters. Missing counters read as zero.
func (h *Store) Stats(ctx context.Context) (Stats, error) {
	total, err := h.readInt(ctx, totalKey)
	if err != nil {
		return Stats{}, fmt.Errorf("read question count: %w", err)
	}
	withImages, err := h.readInt(ctx, withImageKey)
	if err != nil {
		return Stats{}, fmt.Errorf("read image count: %w", err)
	}
	respSum, err := h.readFloat(ctx, respTimeSumKey)
	if err != nil {
		return Stats{}, fmt.Errorf("read response time sum: %w", err)
	}

	stats := Stats{
		TotalQuestions:      total,
		QuestionsWithImages: withImages,
	}
	if total > 0 {
		stats.AverageResponseTime = respSum / float64(total)
	}
	return stats, nil
}

func (h *Store) readInt(ctx context.Context, key string) (int64, error) {
	raw, err := h.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

func (h *Store) readFloat(ctx context.Context, key string) (float64, error) {
	raw, err := h.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseFloat(string(raw), 64)
}

func recordKey(id int64) string {
	return recordKeyPrefix + strconv.FormatInt(id, 10)
}
