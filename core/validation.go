// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
)

// ValidateTemplateEntry checks that an entry carries text and a finite embedding.
func ValidateTemplateEntry(entry *TemplateEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidTemplateEntry)
	}

	if entry.Email == "" {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidTemplateEntry, entry.Id, ErrEmptyEmail)
	}

	if len(entry.Embedding) == 0 {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidTemplateEntry, entry.Id, ErrEmptyEmbedding)
	}

	for i, v := range entry.Embedding {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: id %d: non-finite value at index %d", ErrInvalidTemplateEntry, entry.Id, i)
		}
	}

	return nil
}

// ValidateTemplateStore validates every entry and the shared dimensionality
// invariant. Failures wrap ErrStoreFormat.
func ValidateTemplateStore(store *TemplateStore) error {
	if store == nil {
		return fmt.Errorf("%w: store is nil", ErrStoreFormat)
	}

	dim := store.Dimension
	for i := range store.Entries {
		entry := &store.Entries[i]
		if err := ValidateTemplateEntry(entry); err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrStoreFormat, i, err)
		}
		if dim == 0 {
			dim = len(entry.Embedding)
			continue
		}
		if len(entry.Embedding) != dim {
			return fmt.Errorf("%w: entry %d has dimension %d, expected %d: %w",
				ErrStoreFormat, i, len(entry.Embedding), dim, ErrDimensionMismatch)
		}
	}

	return nil
}

// ValidateDraft checks the fields every persisted draft must carry.
func ValidateDraft(draft *Draft) error {
	if draft == nil {
		return fmt.Errorf("%w: draft is nil", ErrInvalidDraft)
	}

	if draft.Body == "" {
		return fmt.Errorf("%w: body cannot be empty", ErrInvalidDraft)
	}

	if err := ValidateDraftKind(draft.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	return nil
}

// ValidateDraftKind checks k is one of the defined kinds.
func ValidateDraftKind(k DraftKind) error {
	if k < DraftKindEmail || k > DraftKindRevision {
		return fmt.Errorf("%w: value %d", ErrInvalidDraftKind, k)
	}
	return nil
}
