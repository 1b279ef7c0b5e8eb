package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a new EmbeddingCache.
func NewEmbeddingCache(backend *Backend) *EmbeddingCache {
	return &EmbeddingCache{
		backend: backend,
	}
}

// GetVector returns the vector stored under key.
func (c *EmbeddingCache) GetVector(ctx context.Context, key core.ID) ([]float32, bool, error) {
	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			vector, unmarshalErr = storage.UnmarshalVector(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, false, err
	}

	return vector, vector != nil, nil
}

// PutVector persists vector under key.
func (c *EmbeddingCache) PutVector(ctx context.Context, key core.ID, vector []float32) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(key), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close is a no-op; the backend owns the database.
func (c *EmbeddingCache) Close() error {
	return nil
}
