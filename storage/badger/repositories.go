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


package badger

import "github.com/poiesic/coldmail/storage"

// Repositories bundles the BadgerDB-backed repositories sharing one backend.
type Repositories struct {
	Drafts  storage.DraftRepository
	Vectors storage.EmbeddingCache
	backend *Backend
}

// NewRepositories opens (or creates) the database at path.
func NewRepositories(path string) (*Repositories, error) {
	return openRepositories(path, false)
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	return openRepositories("", true)
}

func openRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	drafts, err := NewDraftRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Drafts:  drafts,
		Vectors: NewEmbeddingCache(backend),
		backend: backend,
	}, nil
}

// Backend returns the shared backend.
func (r *Repositories) Backend() *Backend {
	return r.backend
}

// Close releases the repositories and closes the database.
func (r *Repositories) Close() error {
	var firstErr error
	for _, closer := range []func() error{r.Drafts.Close, r.Vectors.Close, r.backend.Close} {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
