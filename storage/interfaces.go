package storage

import (
	"context"
	"time"

	"github.com/poiesic/coldmail/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DraftRepository keeps the history of generated drafts.
type DraftRepository interface {
	Repository

	// AddDrafts stores one or more drafts.
	// Drafts with ID=0 get a new ID from the sequence.
	// Sets CreatedAt if not already set.
	// Returns the drafts with IDs and timestamps populated.
	AddDrafts(ctx context.Context, drafts ...*core.Draft) ([]*core.Draft, error)

	// GetDraft retrieves a single draft by ID.
	// Returns ErrNotFound if the draft doesn't exist.
	GetDraft(ctx context.Context, id core.ID) (*core.Draft, error)

	// GetDraftsByDateRange retrieves drafts where start <= CreatedAt < end,
	// ordered by creation time.
	GetDraftsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Draft, error)

	// GetRecentDrafts retrieves up to limit drafts, most recent first.
	GetRecentDrafts(ctx context.Context, limit int) ([]*core.Draft, error)

	// GetDraftsByCompany retrieves every draft written for company, ordered
	// by creation time. Company names match case-insensitively.
	GetDraftsByCompany(ctx context.Context, company string) ([]*core.Draft, error)
}

// EmbeddingCache persists embedding vectors by content key.
type EmbeddingCache interface {
	// GetVector returns the cached vector and whether it was present.
	GetVector(ctx context.Context, key core.ID) ([]float32, bool, error)

	// PutVector stores vector under key, replacing any previous value.
	PutVector(ctx context.Context, key core.ID, vector []float32) error

	// Close releases resources held by the cache.
	Close() error
}
