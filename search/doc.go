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


// Package search finds the template email closest to a company's query text.
//
// A Retriever embeds the query with an injected ai.Embedder and scans the
// template store computing cosine similarity against every entry. The scan is
// linear; Rank exposes top-K ordering for callers that want more than the
// single winner.
//
// Ordering rules:
//   - Scores are computed in float64 and clamped to [-1, 1].
//   - A zero-norm vector has no defined score and ranks below every defined
//     score. Such matches report a score of -1.
//   - Equal scores keep store order, so the first of duplicate entries wins.
//
// An empty store fails with core.ErrNotFound before the embedder is called.
// Embedding failures and timeouts wrap core.ErrEmbedderUnavailable and
// mismatched vector sizes wrap core.ErrDimensionMismatch.
package search
