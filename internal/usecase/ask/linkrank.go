package ask

import (
	"sort"
	"strings"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// linkScoreWordLen is the length a question word must exceed to count
// toward a link's relevance score.
const linkScoreWordLen = 3

// RankLinks orders candidate links by relevance to the question and the
// composed answer. Scoring: each question word longer than
// linkScoreWordLen found in the link title adds 1; a verbatim mention of
// the link's URL or title in the answer adds 2. Links scoring zero are
// dropped; ties keep candidate order.
func RankLinks(candidates []domain.Link, question, answer string) []domain.Link {
	if len(candidates) == 0 {
		return nil
	}

	loweredQuestion := strings.ToLower(question)
	loweredAnswer := strings.ToLower(answer)

	type scored struct {
		link  domain.Link
		score int
	}

	ranked := make([]scored, 0, len(candidates))
	for _, link := range candidates {
		title := strings.ToLower(link.Title)
		score := 0
		for _, word := range strings.Fields(loweredQuestion) {
			if len(word) > linkScoreWordLen && strings.Contains(title, word) {
				score++
			}
		}
		if strings.Contains(answer, link.URL) || (title != "" && strings.Contains(loweredAnswer, title)) {
			score += 2
		}
		if score > 0 {
			ranked = append(ranked, scored{link: link, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]domain.Link, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.link)
	}
	return out
}
