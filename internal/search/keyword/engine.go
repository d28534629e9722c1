// Package keyword implements literal-match document scoring. It has no
// external dependency and serves as the always-available retrieval path
// when the embedding capability is not configured.
package keyword

import (
	"sort"
	"strings"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/config"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// minWordLen is the shortest question word that contributes to scoring.
// Shorter words ("a", "is", "to") match almost everything.
const minWordLen = 3

// Engine scores documents against a question using a phrase-bonus lexicon
// plus per-word occurrence counts.
type Engine struct {
	phrases []config.PhraseBonus
}

// NewEngine creates a keyword engine with the given phrase lexicon.
func NewEngine(phrases []config.PhraseBonus) *Engine {
	return &Engine{phrases: phrases}
}

// Search scores every document and returns up to topK hits with score > 0,
// in descending score order. Equal scores keep corpus order.
func (e *Engine) Search(question string, docs []domain.Document, topK int) []domain.SearchHit {
	q := strings.ToLower(question)
	words := questionWords(q)

	hits := make([]domain.SearchHit, 0, len(docs))
	for _, doc := range docs {
		text := strings.ToLower(doc.Title + " " + doc.Body)

		score := 0
		var matched []string
		seen := make(map[string]struct{})
		mark := func(term string) {
			if _, ok := seen[term]; ok {
				return
			}
			seen[term] = struct{}{}
			matched = append(matched, term)
		}

		for _, pb := range e.phrases {
			phrase := strings.ToLower(pb.Phrase)
			if strings.Contains(q, phrase) && strings.Contains(text, phrase) {
				score += pb.Weight
				mark(phrase)
			}
		}

		for _, w := range words {
			if n := strings.Count(text, w); n > 0 {
				score += n
				mark(w)
			}
		}

		if score > 0 {
			hits = append(hits, domain.SearchHit{
				Document:     doc,
				Score:        float64(score),
				MatchedTerms: matched,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// questionWords splits a lowercased question into unique words of at least
// minWordLen characters, preserving first-occurrence order.
func questionWords(q string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, w := range strings.Fields(q) {
		if len(w) < minWordLen {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}
