// Package vector implements the embedding-based retrieval path: a flat
// inner-product index over unit-normalized vectors, persisted alongside a
// positional document snapshot.
package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

const (
	vectorsFile   = "vectors.bin"
	documentsFile = "documents.json"
)

// Candidate pairs an index position with its similarity score.
type Candidate struct {
	Position int
	Score    float64
	Document domain.Document
}

// Index is an explicit handle over the flat similarity index. Position i
// of the vector block corresponds to position i of the document snapshot;
// the two are persisted as separate files and must stay in lockstep.
//
// The handle itself is not goroutine-safe; the owning engine serializes
// writers and guards reads.
type Index struct {
	dim     int
	vectors [][]float32
	docs    []domain.Document
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Dim returns the vector dimension.
func (ix *Index) Dim() int { return ix.dim }

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.vectors) }

// Documents returns the positional document snapshot.
func (ix *Index) Documents() []domain.Document { return ix.docs }

// Add appends a normalized vector and its document payload.
func (ix *Index) Add(vec []float32, doc domain.Document) error {
	if len(vec) != ix.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), ix.dim)
	}
	ix.vectors = append(ix.vectors, vec)
	ix.docs = append(ix.docs, doc)
	return nil
}

// Search returns the topK nearest documents by inner product, descending.
// Equal scores keep index position order. topK is clamped to Len().
func (ix *Index) Search(query []float32, topK int) []Candidate {
	if ix.Len() == 0 || topK <= 0 {
		return nil
	}
	if topK > ix.Len() {
		topK = ix.Len()
	}

	candidates := make([]Candidate, 0, ix.Len())
	for i, vec := range ix.vectors {
		candidates = append(candidates, Candidate{
			Position: i,
			Score:    dot(query, vec),
			Document: ix.docs[i],
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	return candidates[:topK]
}

// Save persists the vector block and document snapshot to dir, each via
// write-temp-then-rename. A crash between the two renames leaves the pair
// inconsistent; Load detects the count mismatch and reports it so the
// caller can rebuild.
func (ix *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, vectorsFile), encodeVectors(ix.dim, ix.vectors)); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	snapshot, err := json.Marshal(ix.docs)
	if err != nil {
		return fmt.Errorf("marshal document snapshot: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, documentsFile), snapshot); err != nil {
		return fmt.Errorf("write document snapshot: %w", err)
	}
	return nil
}

// Load reads a persisted index from dir.
func Load(dir string) (*Index, error) {
	raw, err := os.ReadFile(filepath.Clean(filepath.Join(dir, vectorsFile)))
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	dim, vectors, err := decodeVectors(raw)
	if err != nil {
		return nil, fmt.Errorf("decode vectors: %w", err)
	}

	rawDocs, err := os.ReadFile(filepath.Clean(filepath.Join(dir, documentsFile)))
	if err != nil {
		return nil, fmt.Errorf("read document snapshot: %w", err)
	}
	var docs []domain.Document
	if err := json.Unmarshal(rawDocs, &docs); err != nil {
		return nil, fmt.Errorf("decode document snapshot: %w", err)
	}

	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("index/snapshot desync: %d vectors, %d documents", len(vectors), len(docs))
	}

	return &Index{dim: dim, vectors: vectors, docs: docs}, nil
}

// Normalize returns a unit-length copy of v, so that inner product equals
// cosine similarity. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// encodeVectors packs vectors as little-endian float32 with a
// dimension+count header.
func encodeVectors(dim int, vectors [][]float32) []byte {
	buf := make([]byte, 8+len(vectors)*dim*4)
	binary.LittleEndian.PutUint32(buf[0:], uint32(dim))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(vectors)))
	off := 8
	for _, vec := range vectors {
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}

func decodeVectors(raw []byte) (int, [][]float32, error) {
	if len(raw) < 8 {
		return 0, nil, fmt.Errorf("truncated vector file: %d bytes", len(raw))
	}
	dim := int(binary.LittleEndian.Uint32(raw[0:]))
	count := int(binary.LittleEndian.Uint32(raw[4:]))
	if dim <= 0 {
		return 0, nil, fmt.Errorf("invalid dimension %d", dim)
	}
	if len(raw) != 8+count*dim*4 {
		return 0, nil, fmt.Errorf("vector file size mismatch: %d bytes for %d x %d", len(raw), count, dim)
	}

	vectors := make([][]float32, count)
	off := 8
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
