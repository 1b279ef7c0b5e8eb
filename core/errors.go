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

import "errors"

var (
	// ErrStoreFormat indicates the template store is unreadable, not valid
	// JSON, or has entries with missing keys or ragged embeddings.
	ErrStoreFormat = errors.New("template store format error")

	// ErrNotFound indicates there is no candidate to return, e.g. an empty store.
	ErrNotFound = errors.New("not found")

	// ErrEmbedderUnavailable indicates the embedding model failed to load,
	// failed during inference, or timed out. Callers may retry.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")

	// ErrDimensionMismatch indicates a query vector whose dimensionality
	// differs from the stored vectors.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelMismatch indicates the store was built with a different
	// embedding model than the one answering queries.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrInvalidTemplateEntry indicates a TemplateEntry failed validation.
	ErrInvalidTemplateEntry = errors.New("invalid template entry")

	// ErrInvalidCompanyRecord indicates company data could not be decoded.
	ErrInvalidCompanyRecord = errors.New("invalid company record")

	// ErrInvalidDraft indicates a Draft failed validation.
	ErrInvalidDraft = errors.New("invalid draft")

	// ErrEmptyEmail indicates a template entry has no email text.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrEmptyEmbedding indicates a template entry has no embedding.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")

	// ErrInvalidDraftKind indicates an invalid DraftKind value.
	ErrInvalidDraftKind = errors.New("invalid draft kind")
)
