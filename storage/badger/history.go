package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/storage"
)

// DraftRepository implements storage.DraftRepository for BadgerDB.
type DraftRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DraftRepository = (*DraftRepository)(nil)

// NewDraftRepository creates a new DraftRepository.
func NewDraftRepository(backend *Backend) (*DraftRepository, error) {
	idSeq, err := backend.GetSequence(draftIDSeq)
	if err != nil {
		return nil, err
	}

	return &DraftRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DraftRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DraftRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDrafts stores one or more drafts with their date and company index entries.
func (r *DraftRepository) AddDrafts(ctx context.Context, drafts ...*core.Draft) ([]*core.Draft, error) {
	for _, draft := range drafts {
		if err := core.ValidateDraft(draft); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, draft := range drafts {
			if draft.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				draft.Id = core.ID(nextID)
			}

			if draft.CreatedAt.IsZero() {
				draft.CreatedAt = time.Now().UTC()
			}

			if err := tx.Set(makeDraftKey(draft.Id), storage.MarshalDraft(draft)); err != nil {
				return err
			}

			id := storage.MarshalID(draft.Id)
			if err := tx.Set(makeDraftDateKey(draft.CreatedAt, draft.Id), id); err != nil {
				return err
			}
			if draft.Company != "" {
				if err := tx.Set(makeDraftCompanyKey(draft.Company, draft.CreatedAt, draft.Id), id); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return drafts, nil
}

// GetDraft retrieves a single draft by ID.
func (r *DraftRepository) GetDraft(ctx context.Context, id core.ID) (*core.Draft, error) {
	var result *core.Draft
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDraft(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: draft %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetDraftsByDateRange retrieves drafts within a time range.
func (r *DraftRepository) GetDraftsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Draft, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", storage.ErrInvalidQuery, end, start)
	}
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Draft
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDraftDateKey(start)
		endKey := makePartialDraftDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if slices.Compare(iter.Item().Key(), endKey) >= 0 {
				break
			}

			draft, err := r.followIndex(tx, iter.Item())
			if err != nil {
				return err
			}
			if draft != nil {
				results = append(results, draft)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentDrafts retrieves the most recent drafts, newest first.
func (r *DraftRepository) GetRecentDrafts(ctx context.Context, limit int) ([]*core.Draft, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}

	var results []*core.Draft
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent drafts first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialDraftDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(draftDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}

			draft, err := r.followIndex(tx, iter.Item())
			if err != nil {
				return err
			}
			if draft != nil {
				results = append(results, draft)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetDraftsByCompany retrieves every draft for company, oldest first.
func (r *DraftRepository) GetDraftsByCompany(ctx context.Context, company string) ([]*core.Draft, error) {
	if company == "" {
		return nil, fmt.Errorf("%w: company is required", storage.ErrInvalidQuery)
	}

	var results []*core.Draft
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialDraftCompanyKey(company)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			draft, err := r.followIndex(tx, iter.Item())
			if err != nil {
				return err
			}
			if draft != nil {
				results = append(results, draft)
			}
		}
		return nil
	}, false)

	return results, err
}

// followIndex reads the draft whose ID is stored in an index item.
func (r *DraftRepository) followIndex(tx *badger.Txn, item *badger.Item) (*core.Draft, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return r.readDraft(tx, id)
}

// readDraft returns nil, nil when the draft doesn't exist.
func (r *DraftRepository) readDraft(tx *badger.Txn, id core.ID) (*core.Draft, error) {
	item, err := tx.Get(makeDraftKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var draft *core.Draft
	err = item.Value(func(val []byte) error {
		var err error
		draft, err = storage.UnmarshalDraft(val)
		return err
	})
	return draft, err
}
