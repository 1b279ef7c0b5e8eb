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


package reembed

import (
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"strings"
)

// corpusEntry is one element of a template corpus file.
type corpusEntry struct {
	Email string `json:"email"`
}

// LoadCorpus reads a JSON array of {"email": "..."} objects. Blank emails
// are rejected since their position would still consume an id.
func LoadCorpus(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []corpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("corpus %s: %w", path, ErrEmptyCorpus)
	}

	corpus := make([]string, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Email) == "" {
			return nil, fmt.Errorf("corpus %s: entry %d has no email", path, i)
		}
		corpus[i] = e.Email
	}
	return corpus, nil
}

// WriteCorpus writes texts in the format LoadCorpus reads.
func WriteCorpus(path string, texts []string) error {
	entries := make([]corpusEntry, len(texts))
	for i, t := range texts {
		entries[i] = corpusEntry{Email: t}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Batches yields consecutive slices of at most size texts together with the
// corpus index of each batch's first element.
func Batches(texts []string, size int) iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		if size <= 0 {
			size = len(texts)
		}
		for start := 0; start < len(texts); start += size {
			end := min(start+size, len(texts))
			if !yield(start, texts[start:end]) {
				return
			}
		}
	}
}
