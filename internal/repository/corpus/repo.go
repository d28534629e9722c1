// Package corpus persists scraped course and forum documents.
package corpus

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

const (
	docKeyPrefix = domain.KeyPrefix + "doc:"
	urlKeyPrefix = domain.KeyPrefix + "url:"
	seqKey       = domain.KeyPrefix + "seq:doc"
)

// store is the consumer interface for the corpus repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo stores documents as hashes keyed by a monotonically allocated ID,
// with a url→id mapping enforcing URL uniqueness.
type Repo struct {
	store store
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert stores the document unless its URL is already present. Returns
// true and the assigned ID when created; false with domain.ErrDocumentExists
// when the URL was seen before.
func (r *Repo) Insert(ctx context.Context, doc *domain.Document) (bool, error) {
	id, err := r.store.IncrBy(ctx, seqKey, 1)
	if err != nil {
		return false, fmt.Errorf("allocate document id: %w", err)
	}

	// Claim the URL before writing the record. A lost race burns the
	// allocated id, which is harmless: ids only need to be unique and
	// monotonic, not dense.
	created, err := r.store.SetNX(ctx, urlKeyPrefix+doc.URL, []byte(strconv.FormatInt(id, 10)))
	if err != nil {
		return false, fmt.Errorf("claim url %s: %w", doc.URL, err)
	}
	if !created {
		return false, domain.ErrDocumentExists
	}

	doc.ID = id
	if err := r.store.HSet(ctx, docKey(id), buildHashFields(doc)); err != nil {
		return false, fmt.Errorf("store document %d: %w", id, err)
	}
	return true, nil
}

// SetEmbeddingID records the vector-index position assigned to a document.
func (r *Repo) SetEmbeddingID(ctx context.Context, docID, embeddingID int64) error {
	err := r.store.HSet(ctx, docKey(docID), map[string]string{
		"embedding_id": strconv.FormatInt(embeddingID, 10),
	})
	if err != nil {
		return fmt.Errorf("set embedding id for document %d: %w", docID, err)
	}
	return nil
}

// ListAll returns the full corpus snapshot in insertion (ID) order.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Document, error) {
	keys, err := r.store.Scan(ctx, docKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(keys))
	for _, key := range keys {
		fields, err := r.store.HGetAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", key, err)
		}
		if len(fields) == 0 {
			continue // expired or deleted between SCAN and HGETALL
		}
		doc, err := parseHashFields(fields)
		if err != nil {
			return nil, fmt.Errorf("parse document %s: %w", key, err)
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, docKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	return len(keys), nil
}

func docKey(id int64) string {
	return docKeyPrefix + strconv.FormatInt(id, 10)
}
