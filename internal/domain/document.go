package domain

import "time"

// KeyPrefix namespaces all persistence keys for this service.
const KeyPrefix = "virtualta:"

// Category classifies where a document was scraped from.
type Category string

const (
	// CategoryCourse marks official course material pages.
	CategoryCourse Category = "course"
	// CategoryForum marks forum discussion threads.
	CategoryForum Category = "forum"
)

// Document is a scraped content record. Immutable after creation except for
// EmbeddingID, which is assigned when the document enters the vector index.
type Document struct {
	ID          int64
	URL         string
	Title       string
	Body        string
	Category    Category
	ScrapedAt   time.Time
	EmbeddingID int64 // position in the vector index, -1 when not indexed
}

// SearchText is the text the vector index embeds for this document.
func (d Document) SearchText() string {
	return d.Title + "\n" + d.Body
}
