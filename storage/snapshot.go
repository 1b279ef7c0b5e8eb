package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/coldmail/core"
)

// StoreLoader produces a fresh template store, typically by reading it from disk.
type StoreLoader func(ctx context.Context) (*core.TemplateStore, error)

// Snapshot holds the current template store for the life of the process.
// Readers always see a complete store; Reload swaps in a new one atomically
// and readers holding the previous store keep using it.
type Snapshot struct {
	loader  StoreLoader
	current atomic.Pointer[core.TemplateStore]
	group   singleflight.Group
	logger  *slog.Logger
}

// NewSnapshot creates an empty holder that loads stores with loader.
func NewSnapshot(loader StoreLoader) *Snapshot {
	return &Snapshot{
		loader: loader,
		logger: slog.Default().With("component", "store-snapshot"),
	}
}

// NewStaticSnapshot returns a holder already populated with store. Reload
// keeps returning the same store.
func NewStaticSnapshot(store *core.TemplateStore) *Snapshot {
	s := NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		return store, nil
	})
	s.current.Store(store)
	return s
}

// Load returns the current store, loading it on first use.
func (s *Snapshot) Load(ctx context.Context) (*core.TemplateStore, error) {
	if store := s.current.Load(); store != nil {
		return store, nil
	}
	return s.Reload(ctx)
}

// Reload loads a new store and makes it current. Concurrent calls share a
// single load.
func (s *Snapshot) Reload(ctx context.Context) (*core.TemplateStore, error) {
	v, err, shared := s.group.Do("reload", func() (any, error) {
		store, err := s.loader(ctx)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, fmt.Errorf("%w: loader returned no store", core.ErrStoreFormat)
		}
		s.current.Store(store)
		s.logger.Info("template store loaded", "entries", store.Len(), "model", store.Model, "dimension", store.Dimension)
		return store, nil
	})
	if err != nil {
		s.logger.Error("failed to load template store", "err", err)
		return nil, err
	}
	if shared {
		s.logger.Debug("reload coalesced with a concurrent call")
	}
	return v.(*core.TemplateStore), nil
}

// Current returns the loaded store without loading.
// Returns core.ErrNotFound when nothing has been loaded yet.
func (s *Snapshot) Current() (*core.TemplateStore, error) {
	store := s.current.Load()
	if store == nil {
		return nil, fmt.Errorf("%w: no template store loaded", core.ErrNotFound)
	}
	return store, nil
}

// CheckModel verifies the loaded store was built with model. Stores without
// a model tag pass.
func (s *Snapshot) CheckModel(model string) error {
	store, err := s.Current()
	if err != nil {
		return err
	}
	if store.Model != "" && store.Model != model {
		return fmt.Errorf("%w: store built with %q, embedder is %q", core.ErrModelMismatch, store.Model, model)
	}
	return nil
}
