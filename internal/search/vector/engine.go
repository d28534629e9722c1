package vector

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
)

// Engine binds an embedder to a persisted index and exposes the vector
// retrieval path. Lifecycle is explicit: LoadOrBuild at startup, Add for
// incremental updates, Search per query.
//
// The mutex serializes writers (Build/Add) against readers; the persisted
// files themselves are single-writer by convention.
type Engine struct {
	embedder domain.Embedder
	dir      string
	dim      int
	logger   *zap.Logger

	mu    sync.RWMutex
	index *Index
}

// NewEngine creates a vector engine. The index is empty until LoadOrBuild.
func NewEngine(embedder domain.Embedder, dim int, dir string, logger *zap.Logger) *Engine {
	return &Engine{
		embedder: embedder,
		dir:      dir,
		dim:      dim,
		logger:   logger,
		index:    NewIndex(dim),
	}
}

// Ready reports whether the vector path can serve queries.
func (e *Engine) Ready() bool {
	return e != nil && e.embedder != nil
}

// Size returns the number of indexed documents.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.Len()
}

// LoadOrBuild loads the persisted index if present and consistent,
// otherwise rebuilds it from the given corpus snapshot. Any load failure
// (missing files, decode error, index/snapshot desync) triggers a rebuild.
func (e *Engine) LoadOrBuild(ctx context.Context, docs []domain.Document) error {
	ix, err := Load(e.dir)
	if err == nil {
		e.mu.Lock()
		e.index = ix
		e.mu.Unlock()
		e.logger.Info("Loaded existing vector index",
			zap.String("dir", e.dir),
			zap.Int("documents", ix.Len()),
		)
		return nil
	}

	e.logger.Info("Rebuilding vector index", zap.String("dir", e.dir), zap.Error(err))
	return e.Build(ctx, docs)
}

// Build embeds every corpus document and replaces the index, persisting
// the result. An empty corpus yields an empty (searchable) index.
func (e *Engine) Build(ctx context.Context, docs []domain.Document) error {
	ix := NewIndex(e.dim)

	for _, doc := range docs {
		result, err := e.embedder.Embed(ctx, doc.SearchText())
		if err != nil {
			return fmt.Errorf("embed document %d: %w", doc.ID, err)
		}
		doc.EmbeddingID = int64(ix.Len())
		if err := ix.Add(Normalize(result.Embedding), doc); err != nil {
			return fmt.Errorf("index document %d: %w", doc.ID, err)
		}
	}

	if err := ix.Save(e.dir); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	e.mu.Lock()
	e.index = ix
	e.mu.Unlock()

	e.logger.Info("Built vector index", zap.Int("documents", ix.Len()))
	return nil
}

// Add embeds a new document, appends it to the index and snapshot, and
// re-persists both. Returns the index position assigned to the document.
func (e *Engine) Add(ctx context.Context, doc domain.Document) (int64, error) {
	result, err := e.embedder.Embed(ctx, doc.SearchText())
	if err != nil {
		return 0, fmt.Errorf("embed document %d: %w", doc.ID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position := int64(e.index.Len())
	doc.EmbeddingID = position
	if err := e.index.Add(Normalize(result.Embedding), doc); err != nil {
		return 0, fmt.Errorf("index document %d: %w", doc.ID, err)
	}
	if err := e.index.Save(e.dir); err != nil {
		return 0, fmt.Errorf("persist index: %w", err)
	}
	return position, nil
}

// Search embeds the query and returns the top min(topK, size) hits by
// cosine similarity. An empty index yields no hits without error.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error) {
	e.mu.RLock()
	ix := e.index
	e.mu.RUnlock()

	if ix.Len() == 0 {
		return nil, nil
	}

	result, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates := ix.Search(Normalize(result.Embedding), topK)
	hits := make([]domain.SearchHit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, domain.SearchHit{Document: c.Document, Score: c.Score})
	}
	return hits, nil
}
