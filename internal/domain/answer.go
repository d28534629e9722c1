package domain

// SearchHit is a per-query scored document. Score scales differ by engine:
// cosine similarity in [-1,1] for vector search, an unbounded additive
// weight for keyword search. Never compare scores across engines.
type SearchHit struct {
	Document     Document
	Score        float64
	MatchedTerms []string
}

// Link is a source reference returned alongside an answer.
// The wire name for the title is "text" (legacy client contract).
type Link struct {
	URL   string `json:"url"`
	Title string `json:"text"`
}

// ContextEntry is one retrieved snippet fed to the answer composer.
type ContextEntry struct {
	Title   string
	URL     string
	Snippet string
}

// ContextBundle is the retrieval selector output: snippets for the
// composer plus link candidates kept separate so link ranking does not
// depend on snippet content.
type ContextBundle struct {
	Entries []ContextEntry
	Links   []Link
}

// AnswerResult is the externally observable pipeline output.
// Links never exceeds 3 entries and every link has nonzero relevance.
type AnswerResult struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}
