package reembed

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coldmail/ai/mock"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/search"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestBuilder_Build(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var buf bytes.Buffer
	corpus := []string{"first", "second", "third", "fourth", "fifth"}

	store, err := NewBuilder(embedder, testConfig(), &buf).Build(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, "mock-embedding", store.Model)
	assert.Equal(t, mock.DefaultDimension, store.Dimension)
	require.Len(t, store.Entries, 5)
	for i, entry := range store.Entries {
		assert.Equal(t, i, entry.Id)
		assert.Equal(t, corpus[i], entry.Email)
		assert.Len(t, entry.Embedding, mock.DefaultDimension)
	}
	assert.Equal(t, 3, embedder.CallCount(), "5 templates in batches of 2")
	assert.Contains(t, buf.String(), "5/5")
	assert.NoError(t, core.ValidateTemplateStore(store))
}

func TestBuilder_StoreRetrievesItsOwnTemplates(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	corpus := []string{"alpha", "beta", "gamma"}

	store, err := NewBuilder(embedder, testConfig(), nil).Build(context.Background(), corpus)
	require.NoError(t, err)

	r, err := search.NewRetriever(embedder)
	require.NoError(t, err)
	for _, text := range corpus {
		email, err := r.RetrieveMostSimilar(context.Background(), text, store.Entries)
		require.NoError(t, err)
		assert.Equal(t, text, email)
	}
}

func TestBuilder_EmptyCorpus(t *testing.T) {
	_, err := NewBuilder(mock.NewMockEmbedder(), nil, nil).Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestBuilder_RetriesTransientFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("503 service unavailable")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, float32(i)}
		}
		return out, nil
	}

	store, err := NewBuilder(embedder, testConfig(), nil).Build(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, int32(2), calls.Load())
}

func TestBuilder_GivesUpAfterMaxRetries(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("down")
	}

	_, err := NewBuilder(embedder, testConfig(), nil).Build(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestBuilder_CountMismatchNotRetried(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	_, err := NewBuilder(embedder, testConfig(), nil).Build(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrEmbeddingCount)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestBuilder_RaggedEmbeddings(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = make([]float32, 2+i)
			out[i][0] = 1
		}
		return out, nil
	}

	_, err := NewBuilder(embedder, testConfig(), nil).Build(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestBuilder_Normalize(t *testing.T) {
	embedder := mock.NewFixedEmbedder(map[string][]float32{"a": {3, 4}})
	cfg := testConfig()
	cfg.Normalize = true

	store, err := NewBuilder(embedder, cfg, nil).Build(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, store.Entries[0].Embedding, 1e-6)
}

func TestBuilder_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(mock.NewMockEmbedder(), testConfig(), nil).Build(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emails.json")
	require.NoError(t, WriteCorpus(path, []string{"Hi {name}", "Hello"}))

	corpus, err := LoadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi {name}", "Hello"}, corpus)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, WriteCorpus(empty, nil))
	_, err = LoadCorpus(empty)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	blank := filepath.Join(dir, "blank.json")
	require.NoError(t, WriteCorpus(blank, []string{"ok", "  "}))
	_, err = LoadCorpus(blank)
	assert.Error(t, err)

	_, err = LoadCorpus(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestBatches(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}

	var starts []int
	var sizes []int
	for start, batch := range Batches(texts, 2) {
		starts = append(starts, start)
		sizes = append(sizes, len(batch))
	}
	assert.Equal(t, []int{0, 2, 4}, starts)
	assert.Equal(t, []int{2, 2, 1}, sizes)

	count := 0
	for range Batches(texts, 0) {
		count++
	}
	assert.Equal(t, 1, count, "non-positive size yields a single batch")

	for range Batches(texts, 1) {
		break
	}
}
