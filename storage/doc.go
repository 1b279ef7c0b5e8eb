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


// Package storage provides the storage abstraction layer for coldmail.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic, the MUS binary encoding shared by the backends, and the
// Snapshot holder that keeps the current template store in memory.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interfaces:
//
//	repos, err := badger.NewRepositories(path)  // returns *Repositories with interface fields
//
// Internal constructors (newDraftRepository, newBackend, etc.) may return
// concrete types since they're only used within the implementation package.
//
// # Architecture
//
//   - DraftRepository: History of generated drafts
//   - EmbeddingCache: Persistent embedding vectors keyed by content
//   - Snapshot: Atomic holder of the loaded template store
//
// The template store itself lives in a JSON file (see storage/jsonfile) so it
// can be versioned and reviewed alongside the template corpus.
//
// # Usage
//
//	repos, err := badger.NewRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
