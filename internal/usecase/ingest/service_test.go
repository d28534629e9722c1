package ingest

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// --- Mocks ---

type mockCorpus struct {
	InsertFunc         func(ctx context.Context, doc *domain.Document) (bool, error)
	SetEmbeddingIDFunc func(ctx context.Context, docID, embeddingID int64) error
}

func (m *mockCorpus) Insert(ctx context.Context, doc *domain.Document) (bool, error) {
	return m.InsertFunc(ctx, doc)
}

func (m *mockCorpus) SetEmbeddingID(ctx context.Context, docID, embeddingID int64) error {
	if m.SetEmbeddingIDFunc == nil {
		return nil
	}
	return m.SetEmbeddingIDFunc(ctx, docID, embeddingID)
}

type mockIndexer struct {
	AddFunc   func(ctx context.Context, doc domain.Document) (int64, error)
	ReadyFunc func() bool
}

func (m *mockIndexer) Add(ctx context.Context, doc domain.Document) (int64, error) {
	return m.AddFunc(ctx, doc)
}

func (m *mockIndexer) Ready() bool {
	if m.ReadyFunc == nil {
		return true
	}
	return m.ReadyFunc()
}

func insertAssigning(id int64) func(ctx context.Context, doc *domain.Document) (bool, error) {
	return func(_ context.Context, doc *domain.Document) (bool, error) {
		doc.ID = id
		return true, nil
	}
}

func validDoc() domain.Document {
	return domain.Document{
		URL:      "https://example.com/docker",
		Title:    "Docker Guidelines",
		Body:     "Use docker for containerization.",
		Category: domain.CategoryCourse,
	}
}

// --- Tests ---

func TestIngest_StoresAndIndexes(t *testing.T) {
	var linkedDoc, linkedPos int64
	corpus := &mockCorpus{
		InsertFunc: insertAssigning(7),
		SetEmbeddingIDFunc: func(_ context.Context, docID, embeddingID int64) error {
			linkedDoc, linkedPos = docID, embeddingID
			return nil
		},
	}
	indexer := &mockIndexer{
		AddFunc: func(_ context.Context, doc domain.Document) (int64, error) {
			if doc.ID != 7 {
				t.Errorf("indexed doc id = %d, want 7", doc.ID)
			}
			return 3, nil
		},
	}

	svc := New(corpus, indexer, zap.NewNop())
	doc, err := svc.Ingest(context.Background(), validDoc())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if doc.ID != 7 || doc.EmbeddingID != 3 {
		t.Errorf("doc = id %d embedding_id %d, want 7/3", doc.ID, doc.EmbeddingID)
	}
	if linkedDoc != 7 || linkedPos != 3 {
		t.Errorf("persisted link = %d/%d, want 7/3", linkedDoc, linkedPos)
	}
	if doc.ScrapedAt.IsZero() {
		t.Error("scraped_at should be stamped")
	}
}

func TestIngest_NoIndexer(t *testing.T) {
	corpus := &mockCorpus{InsertFunc: insertAssigning(1)}

	svc := New(corpus, nil, zap.NewNop())
	doc, err := svc.Ingest(context.Background(), validDoc())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if doc.EmbeddingID != -1 {
		t.Errorf("embedding_id = %d, want -1 when no indexer", doc.EmbeddingID)
	}
}

func TestIngest_IndexFailureKeepsDocument(t *testing.T) {
	corpus := &mockCorpus{
		InsertFunc: insertAssigning(2),
		SetEmbeddingIDFunc: func(context.Context, int64, int64) error {
			t.Fatal("no position to persist after index failure")
			return nil
		},
	}
	indexer := &mockIndexer{
		AddFunc: func(context.Context, domain.Document) (int64, error) {
			return 0, errors.New("embedding backend down")
		},
	}

	svc := New(corpus, indexer, zap.NewNop())
	doc, err := svc.Ingest(context.Background(), validDoc())
	if err != nil {
		t.Fatalf("ingest should not fail on index error: %v", err)
	}
	if doc.ID != 2 || doc.EmbeddingID != -1 {
		t.Errorf("doc = id %d embedding_id %d, want 2/-1", doc.ID, doc.EmbeddingID)
	}
}

func TestIngest_DuplicateURL(t *testing.T) {
	corpus := &mockCorpus{
		InsertFunc: func(context.Context, *domain.Document) (bool, error) {
			return false, domain.ErrDocumentExists
		},
	}

	svc := New(corpus, nil, zap.NewNop())
	_, err := svc.Ingest(context.Background(), validDoc())
	if !errors.Is(err, domain.ErrDocumentExists) {
		t.Errorf("error = %v, want ErrDocumentExists", err)
	}
}

func TestIngest_Validation(t *testing.T) {
	corpus := &mockCorpus{
		InsertFunc: func(context.Context, *domain.Document) (bool, error) {
			t.Fatal("invalid documents must not reach the store")
			return false, nil
		},
	}
	svc := New(corpus, nil, zap.NewNop())

	cases := map[string]domain.Document{
		"missing url":     {Title: "t", Body: "b"},
		"missing title":   {URL: "https://a", Body: "b"},
		"missing content": {URL: "https://a", Title: "t"},
		"blank fields":    {URL: "  ", Title: "t", Body: "b"},
		"bad category":    {URL: "https://a", Title: "t", Body: "b", Category: "wiki"},
	}
	for name, doc := range cases {
		if _, err := svc.Ingest(context.Background(), doc); !errors.Is(err, domain.ErrInvalidDocument) {
			t.Errorf("%s: error = %v, want ErrInvalidDocument", name, err)
		}
	}
}

func TestIngest_DefaultCategory(t *testing.T) {
	var stored domain.Category
	corpus := &mockCorpus{
		InsertFunc: func(_ context.Context, doc *domain.Document) (bool, error) {
			stored = doc.Category
			doc.ID = 1
			return true, nil
		},
	}

	svc := New(corpus, nil, zap.NewNop())
	doc := validDoc()
	doc.Category = ""
	if _, err := svc.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stored != domain.CategoryCourse {
		t.Errorf("category = %q, want course default", stored)
	}
}
