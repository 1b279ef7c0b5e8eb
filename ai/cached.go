package ai

import (
	"context"
	"log/slog"

	"github.com/poiesic/coldmail/core"
)

// VectorCache persists embeddings by content key.
type VectorCache interface {
	// GetVector returns the cached vector and whether it was present.
	GetVector(ctx context.Context, key core.ID) ([]float32, bool, error)

	// PutVector stores a vector under key.
	PutVector(ctx context.Context, key core.ID, vector []float32) error
}

// CachedEmbedder wraps an Embedder with a VectorCache. Cache failures are
// logged and the inner embedder is used instead.
type CachedEmbedder struct {
	inner  Embedder
	cache  VectorCache
	logger *slog.Logger
}

// NewCachedEmbedder returns inner wrapped with cache.
func NewCachedEmbedder(inner Embedder, cache VectorCache) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		logger: slog.Default().With("component", "embedding-cache"),
	}
}

// CacheKey identifies the embedding of text under model.
func CacheKey(model, text string) core.ID {
	return core.IDFromContent(model + "\x00" + text)
}

// EmbedText returns the cached vector for text or embeds and caches it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.inner.Model(), text)
	if v, ok := c.lookup(ctx, key); ok {
		return v, nil
	}

	v, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, v)
	return v, nil
}

// EmbedTexts serves cached vectors and embeds only the misses in one batch.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.inner.Model()
	result := make([][]float32, len(texts))
	keys := make([]core.ID, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		keys[i] = CacheKey(model, text)
		if v, ok := c.lookup(ctx, keys[i]); ok {
			result[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	c.logger.Debug("embedding cache misses", "hits", len(texts)-len(missing), "misses", len(missing))

	vectors, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vectors {
		if j >= len(missingIdx) {
			break
		}
		i := missingIdx[j]
		result[i] = v
		c.store(ctx, keys[i], v)
	}
	return result, nil
}

// Model returns the inner embedder's model.
func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

func (c *CachedEmbedder) lookup(ctx context.Context, key core.ID) ([]float32, bool) {
	v, ok, err := c.cache.GetVector(ctx, key)
	if err != nil {
		c.logger.Warn("embedding cache read failed", "key", key, "err", err)
		return nil, false
	}
	return v, ok && len(v) > 0
}

func (c *CachedEmbedder) store(ctx context.Context, key core.ID, v []float32) {
	if len(v) == 0 {
		return
	}
	if err := c.cache.PutVector(ctx, key, v); err != nil {
		c.logger.Warn("embedding cache write failed", "key", key, "err", err)
	}
}
