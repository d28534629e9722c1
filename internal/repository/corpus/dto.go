package corpus

import (
	"fmt"
	"strconv"
	"time"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// buildHashFields converts a domain Document into a flat map for HSET.
func buildHashFields(doc *domain.Document) map[string]string {
	fields := map[string]string{
		"id":       strconv.FormatInt(doc.ID, 10),
		"url":      doc.URL,
		"title":    doc.Title,
		"body":     doc.Body,
		"category": string(doc.Category),
	}
	if !doc.ScrapedAt.IsZero() {
		fields["scraped_at"] = doc.ScrapedAt.UTC().Format(time.RFC3339)
	}
	// embedding_id is assigned later via SetEmbeddingID, once the
	// document enters the vector index.
	return fields
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(fields map[string]string) (domain.Document, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return domain.Document{}, fmt.Errorf("bad id %q: %w", fields["id"], err)
	}

	doc := domain.Document{
		ID:          id,
		URL:         fields["url"],
		Title:       fields["title"],
		Body:        fields["body"],
		Category:    domain.Category(fields["category"]),
		EmbeddingID: -1,
	}

	if raw := fields["scraped_at"]; raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Document{}, fmt.Errorf("bad scraped_at %q: %w", raw, err)
		}
		doc.ScrapedAt = ts
	}
	if raw := fields["embedding_id"]; raw != "" {
		embID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Document{}, fmt.Errorf("bad embedding_id %q: %w", raw, err)
		}
		doc.EmbeddingID = embID
	}
	return doc, nil
}
