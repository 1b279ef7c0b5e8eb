package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/coldmail/core"
)

func sampleStore(model string, emails ...string) *core.TemplateStore {
	store := &core.TemplateStore{Model: model, Dimension: 2}
	for i, e := range emails {
		store.Entries = append(store.Entries, core.TemplateEntry{Id: i, Email: e, Embedding: []float32{1, float32(i)}})
	}
	return store
}

func TestSnapshot_CurrentBeforeLoad(t *testing.T) {
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		return sampleStore("m", "A"), nil
	})

	_, err := s.Current()
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, s.CheckModel("m"), core.ErrNotFound)
}

func TestSnapshot_LoadOnce(t *testing.T) {
	var calls atomic.Int32
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		calls.Add(1)
		return sampleStore("m", "A"), nil
	})
	ctx := context.Background()

	first, err := s.Load(ctx)
	require.NoError(t, err)
	second, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	current, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestSnapshot_ReloadSwaps(t *testing.T) {
	version := 0
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		version++
		if version == 1 {
			return sampleStore("m", "old"), nil
		}
		return sampleStore("m", "new"), nil
	})
	ctx := context.Background()

	old, err := s.Load(ctx)
	require.NoError(t, err)

	fresh, err := s.Reload(ctx)
	require.NoError(t, err)

	assert.Equal(t, "old", old.Entries[0].Email, "readers keep the store they already hold")
	assert.Equal(t, "new", fresh.Entries[0].Email)

	current, _ := s.Current()
	assert.Same(t, fresh, current)
}

func TestSnapshot_ReloadFailureKeepsCurrent(t *testing.T) {
	fail := false
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		if fail {
			return nil, core.ErrStoreFormat
		}
		return sampleStore("m", "A"), nil
	})
	ctx := context.Background()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	fail = true
	_, err = s.Reload(ctx)
	assert.ErrorIs(t, err, core.ErrStoreFormat)

	current, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, loaded, current)
}

func TestSnapshot_NilStoreRejected(t *testing.T) {
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		return nil, nil
	})
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrStoreFormat)
}

func TestSnapshot_ConcurrentReloadsCoalesce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		calls.Add(1)
		<-release
		return sampleStore("m", "A"), nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Reload(context.Background())
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Less(t, calls.Load(), int32(8))
}

func TestSnapshot_CheckModel(t *testing.T) {
	tagged := NewStaticSnapshot(sampleStore("all-minilm", "A"))
	assert.NoError(t, tagged.CheckModel("all-minilm"))
	assert.ErrorIs(t, tagged.CheckModel("text-embedding-3-small"), core.ErrModelMismatch)

	untagged := NewStaticSnapshot(sampleStore("", "A"))
	assert.NoError(t, untagged.CheckModel("anything"))
}

func TestNewStaticSnapshot(t *testing.T) {
	store := sampleStore("m", "A")
	s := NewStaticSnapshot(store)

	current, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, store, current)

	reloaded, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, store, reloaded)
	assert.False(t, errors.Is(err, core.ErrNotFound))
}
