package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidateTemplateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *TemplateEntry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   &TemplateEntry{Id: 1, Email: "Hello", Embedding: []float32{0.1, 0.2}},
			wantErr: nil,
		},
		{
			name:    "valid entry with ID 0",
			entry:   &TemplateEntry{Id: 0, Email: "Hello", Embedding: []float32{1}},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidTemplateEntry,
		},
		{
			name:    "empty email",
			entry:   &TemplateEntry{Id: 1, Embedding: []float32{1}},
			wantErr: ErrEmptyEmail,
		},
		{
			name:    "empty embedding",
			entry:   &TemplateEntry{Id: 1, Email: "Hello"},
			wantErr: ErrEmptyEmbedding,
		},
		{
			name:    "NaN in embedding",
			entry:   &TemplateEntry{Id: 1, Email: "Hello", Embedding: []float32{float32(math.NaN())}},
			wantErr: ErrInvalidTemplateEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateEntry(tt.entry)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTemplateEntry() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateTemplateEntry() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTemplateEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTemplateStore(t *testing.T) {
	tests := []struct {
		name    string
		store   *TemplateStore
		wantErr []error
	}{
		{
			name: "valid store",
			store: &TemplateStore{Entries: []TemplateEntry{
				{Id: 0, Email: "A", Embedding: []float32{1, 0}},
				{Id: 1, Email: "B", Embedding: []float32{0, 1}},
			}},
		},
		{
			name:  "empty store is structurally valid",
			store: &TemplateStore{},
		},
		{
			name:    "nil store",
			store:   nil,
			wantErr: []error{ErrStoreFormat},
		},
		{
			name: "ragged embeddings",
			store: &TemplateStore{Entries: []TemplateEntry{
				{Id: 0, Email: "A", Embedding: []float32{1, 0}},
				{Id: 1, Email: "B", Embedding: []float32{0, 1, 0}},
			}},
			wantErr: []error{ErrStoreFormat, ErrDimensionMismatch},
		},
		{
			name: "declared dimension disagrees",
			store: &TemplateStore{Dimension: 3, Entries: []TemplateEntry{
				{Id: 0, Email: "A", Embedding: []float32{1, 0}},
			}},
			wantErr: []error{ErrStoreFormat, ErrDimensionMismatch},
		},
		{
			name: "entry without email",
			store: &TemplateStore{Entries: []TemplateEntry{
				{Id: 0, Embedding: []float32{1, 0}},
			}},
			wantErr: []error{ErrStoreFormat, ErrEmptyEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateStore(tt.store)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("ValidateTemplateStore() error = %v, want nil", err)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("ValidateTemplateStore() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name    string
		draft   *Draft
		wantErr error
	}{
		{
			name:  "valid draft",
			draft: &Draft{Kind: DraftKindEmail, Body: "Hi", CreatedAt: time.Now()},
		},
		{
			name:    "nil draft",
			draft:   nil,
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "empty body",
			draft:   &Draft{Kind: DraftKindEmail},
			wantErr: ErrInvalidDraft,
		},
		{
			name:    "invalid kind",
			draft:   &Draft{Kind: DraftKind(99), Body: "Hi"},
			wantErr: ErrInvalidDraftKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.draft)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDraft() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDraft() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDraftKind(t *testing.T) {
	for _, k := range []DraftKind{DraftKindEmail, DraftKindLinkedIn, DraftKindVariant, DraftKindMerged, DraftKindRevision} {
		if err := ValidateDraftKind(k); err != nil {
			t.Errorf("ValidateDraftKind(%d) error = %v, want nil", k, err)
		}
	}
	for _, k := range []DraftKind{0, -1, 6} {
		err := ValidateDraftKind(k)
		if !errors.Is(err, ErrInvalidDraftKind) {
			t.Errorf("ValidateDraftKind(%d) error = %v, want %v", k, err, ErrInvalidDraftKind)
		}
	}
}
