package ask

import (
	"context"
	"time"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

type mockCorpus struct {
	ListAllFunc func(ctx context.Context) ([]domain.Document, error)
}

func (m *mockCorpus) ListAll(ctx context.Context) ([]domain.Document, error) {
	return m.ListAllFunc(ctx)
}

type mockVector struct {
	SearchFunc func(ctx context.Context, query string, topK int) ([]domain.SearchHit, error)
	ReadyFunc  func() bool
}

func (m *mockVector) Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error) {
	return m.SearchFunc(ctx, query, topK)
}

func (m *mockVector) Ready() bool {
	if m.ReadyFunc == nil {
		return true
	}
	return m.ReadyFunc()
}

type mockKeyword struct {
	SearchFunc func(question string, docs []domain.Document, topK int) []domain.SearchHit
}

func (m *mockKeyword) Search(question string, docs []domain.Document, topK int) []domain.SearchHit {
	return m.SearchFunc(question, docs, topK)
}

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, systemPrompt, userText string, image []byte) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userText string, image []byte) (string, error) {
	return m.GenerateFunc(ctx, systemPrompt, userText, image)
}

type recordedCall struct {
	question string
	answer   string
	links    []domain.Link
	hasImage bool
	elapsed  time.Duration
}

type mockRecorder struct {
	calls      []recordedCall
	RecordFunc func(ctx context.Context, question, answer string, links []domain.Link,
		hasImage bool, elapsed time.Duration) error
}

func (m *mockRecorder) Record(ctx context.Context, question, answer string, links []domain.Link,
	hasImage bool, elapsed time.Duration) error {
	m.calls = append(m.calls, recordedCall{
		question: question,
		answer:   answer,
		links:    links,
		hasImage: hasImage,
		elapsed:  elapsed,
	})
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, question, answer, links, hasImage, elapsed)
	}
	return nil
}

func hitFor(id int64, title, url, body string, score float64) domain.SearchHit {
	return domain.SearchHit{
		Document: domain.Document{ID: id, Title: title, URL: url, Body: body},
		Score:    score,
	}
}
