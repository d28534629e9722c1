package vector

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

func TestIndex_SearchEmptyIndex(t *testing.T) {
	ix := NewIndex(3)
	if got := ix.Search([]float32{1, 0, 0}, 5); got != nil {
		t.Fatalf("expected nil for empty index, got %v", got)
	}
}

func TestIndex_AddDimensionMismatch(t *testing.T) {
	ix := NewIndex(3)
	if err := ix.Add([]float32{1, 0}, domain.Document{ID: 1}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestIndex_SelfSimilarityNearOne(t *testing.T) {
	ix := NewIndex(3)
	vecs := [][]float32{
		Normalize([]float32{1, 2, 3}),
		Normalize([]float32{-4, 0, 1}),
		Normalize([]float32{0.5, 0.5, 0}),
	}
	for i, v := range vecs {
		if err := ix.Add(v, domain.Document{ID: int64(i + 1)}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got := ix.Search(vecs[1], 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Document.ID != 2 {
		t.Errorf("expected document 2 first, got %d", got[0].Document.ID)
	}
	if math.Abs(got[0].Score-1.0) > 1e-6 {
		t.Errorf("self similarity: got %g, want ~1.0", got[0].Score)
	}
}

func TestIndex_TopKClamped(t *testing.T) {
	ix := NewIndex(2)
	_ = ix.Add([]float32{1, 0}, domain.Document{ID: 1})
	_ = ix.Add([]float32{0, 1}, domain.Document{ID: 2})

	got := ix.Search([]float32{1, 0}, 10)
	if len(got) != 2 {
		t.Fatalf("expected topK clamped to 2, got %d", len(got))
	}
}

func TestIndex_StableTieOrder(t *testing.T) {
	ix := NewIndex(2)
	// Identical vectors, identical scores: index position order must hold.
	for i := int64(1); i <= 3; i++ {
		_ = ix.Add([]float32{1, 0}, domain.Document{ID: i})
	}

	got := ix.Search([]float32{1, 0}, 3)
	for i, wantID := range []int64{1, 2, 3} {
		if got[i].Document.ID != wantID {
			t.Errorf("position %d: got id %d, want %d", i, got[i].Document.ID, wantID)
		}
	}
}

func TestIndex_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	ix := NewIndex(3)
	docs := []domain.Document{
		{ID: 1, URL: "https://a", Title: "A", Body: "alpha", Category: domain.CategoryCourse},
		{ID: 2, URL: "https://b", Title: "B", Body: "beta", Category: domain.CategoryForum},
	}
	_ = ix.Add(Normalize([]float32{1, 2, 3}), docs[0])
	_ = ix.Add(Normalize([]float32{3, 2, 1}), docs[1])

	if err := ix.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 2 || loaded.Dim() != 3 {
		t.Fatalf("loaded len=%d dim=%d, want 2/3", loaded.Len(), loaded.Dim())
	}

	query := Normalize([]float32{1, 2, 3})
	before := ix.Search(query, 2)
	after := loaded.Search(query, 2)
	for i := range before {
		if before[i].Document.ID != after[i].Document.ID {
			t.Errorf("ranking changed after reload at %d: %d vs %d",
				i, before[i].Document.ID, after[i].Document.ID)
		}
		if math.Abs(before[i].Score-after[i].Score) > 1e-6 {
			t.Errorf("score changed after reload at %d: %g vs %g",
				i, before[i].Score, after[i].Score)
		}
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing index files")
	}
}

func TestLoad_DesyncDetected(t *testing.T) {
	dir := t.TempDir()

	ix := NewIndex(2)
	_ = ix.Add([]float32{1, 0}, domain.Document{ID: 1})
	_ = ix.Add([]float32{0, 1}, domain.Document{ID: 2})
	if err := ix.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Truncate the snapshot to one document while vectors keep two rows.
	if err := os.WriteFile(filepath.Join(dir, documentsFile), []byte(`[{"ID":1}]`), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected desync error")
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	if math.Abs(dot(v, v)-1.0) > 1e-6 {
		t.Errorf("normalized vector length: got %g, want 1", dot(v, v))
	}

	zero := []float32{0, 0}
	if got := Normalize(zero); got[0] != 0 || got[1] != 0 {
		t.Errorf("zero vector changed: %v", got)
	}
}
