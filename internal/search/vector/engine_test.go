package vector

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// hashEmbedder produces deterministic pseudo-embeddings from the input
// text so identical texts always land on identical vectors.
type hashEmbedder struct {
	dim   int
	err   error
	calls int
}

func (h *hashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	h.calls++
	if h.err != nil {
		return domain.EmbeddingResult{}, h.err
	}
	vec := make([]float32, h.dim)
	seed := uint32(2166136261)
	for _, b := range []byte(text) {
		seed = (seed ^ uint32(b)) * 16777619
	}
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 - 0.5
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func testCorpus() []domain.Document {
	return []domain.Document{
		{ID: 1, URL: "https://a", Title: "Docker Guidelines", Body: "containers"},
		{ID: 2, URL: "https://b", Title: "Podman Notes", Body: "replacement"},
		{ID: 3, URL: "https://c", Title: "GA4 Dashboard", Body: "analytics"},
	}
}

func newTestEngine(t *testing.T, emb domain.Embedder) *Engine {
	t.Helper()
	return NewEngine(emb, 8, t.TempDir(), zap.NewNop())
}

func TestEngine_BuildAndSearchOwnTitle(t *testing.T) {
	emb := &hashEmbedder{dim: 8}
	eng := newTestEngine(t, emb)

	if err := eng.Build(context.Background(), testCorpus()); err != nil {
		t.Fatalf("build: %v", err)
	}
	if eng.Size() != 3 {
		t.Fatalf("size: got %d, want 3", eng.Size())
	}

	// Querying with a document's own indexed text must return it on top
	// with similarity ~1.0 (deterministic embedder, normalized vectors).
	doc := testCorpus()[1]
	hits, err := eng.Search(context.Background(), doc.SearchText(), 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hits")
	}
	if hits[0].Document.ID != doc.ID {
		t.Errorf("top hit: got id %d, want %d", hits[0].Document.ID, doc.ID)
	}
	if math.Abs(hits[0].Score-1.0) > 1e-5 {
		t.Errorf("top score: got %g, want ~1.0", hits[0].Score)
	}
}

func TestEngine_EmptyCorpus(t *testing.T) {
	eng := newTestEngine(t, &hashEmbedder{dim: 8})

	if err := eng.Build(context.Background(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	hits, err := eng.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestEngine_LoadOrBuild_ReloadKeepsRanking(t *testing.T) {
	emb := &hashEmbedder{dim: 8}
	dir := t.TempDir()

	first := NewEngine(emb, 8, dir, zap.NewNop())
	if err := first.Build(context.Background(), testCorpus()); err != nil {
		t.Fatalf("build: %v", err)
	}
	before, err := first.Search(context.Background(), "docker containers", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	// Second engine must load the persisted files, not rebuild.
	embedCallsAfterBuild := emb.calls
	second := NewEngine(emb, 8, dir, zap.NewNop())
	if err := second.LoadOrBuild(context.Background(), testCorpus()); err != nil {
		t.Fatalf("load or build: %v", err)
	}
	if emb.calls != embedCallsAfterBuild {
		t.Errorf("expected load without re-embedding, got %d extra calls", emb.calls-embedCallsAfterBuild)
	}

	after, err := second.Search(context.Background(), "docker containers", 3)
	if err != nil {
		t.Fatalf("search after reload: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("hit counts differ: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Document.ID != after[i].Document.ID {
			t.Errorf("ranking changed after reload at %d: %d vs %d",
				i, before[i].Document.ID, after[i].Document.ID)
		}
	}
}

func TestEngine_LoadOrBuild_RebuildsOnMissingFiles(t *testing.T) {
	emb := &hashEmbedder{dim: 8}
	eng := newTestEngine(t, emb)

	if err := eng.LoadOrBuild(context.Background(), testCorpus()); err != nil {
		t.Fatalf("load or build: %v", err)
	}
	if eng.Size() != 3 {
		t.Fatalf("size after rebuild: got %d, want 3", eng.Size())
	}
}

func TestEngine_AddPersists(t *testing.T) {
	emb := &hashEmbedder{dim: 8}
	dir := t.TempDir()
	eng := NewEngine(emb, 8, dir, zap.NewNop())

	if err := eng.Build(context.Background(), testCorpus()); err != nil {
		t.Fatalf("build: %v", err)
	}
	newDoc := domain.Document{ID: 4, URL: "https://d", Title: "Exam Schedule", Body: "sep 2025"}
	position, err := eng.Add(context.Background(), newDoc)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if position != 3 {
		t.Fatalf("assigned position: got %d, want 3", position)
	}
	if eng.Size() != 4 {
		t.Fatalf("size after add: got %d, want 4", eng.Size())
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load after add: %v", err)
	}
	if reloaded.Len() != 4 {
		t.Fatalf("persisted size: got %d, want 4", reloaded.Len())
	}
	last := reloaded.Documents()[3]
	if last.ID != 4 || last.EmbeddingID != 3 {
		t.Errorf("appended payload: got id=%d embedding_id=%d, want 4/3", last.ID, last.EmbeddingID)
	}
}

func TestEngine_SearchEmbedError(t *testing.T) {
	emb := &hashEmbedder{dim: 8}
	eng := newTestEngine(t, emb)
	if err := eng.Build(context.Background(), testCorpus()); err != nil {
		t.Fatalf("build: %v", err)
	}

	emb.err = errors.New("provider down")
	if _, err := eng.Search(context.Background(), "docker", 3); err == nil {
		t.Fatal("expected embed error to propagate")
	}
}

func TestEngine_Ready(t *testing.T) {
	var nilEngine *Engine
	if nilEngine.Ready() {
		t.Error("nil engine must not be ready")
	}
	if NewEngine(nil, 8, t.TempDir(), zap.NewNop()).Ready() {
		t.Error("engine without embedder must not be ready")
	}
	if !newTestEngine(t, &hashEmbedder{dim: 8}).Ready() {
		t.Error("engine with embedder must be ready")
	}
}
