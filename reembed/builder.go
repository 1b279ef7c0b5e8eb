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
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/coldmail/ai"
	"github.com/poiesic/coldmail/core"
)

// Config holds configuration for building a store.
type Config struct {
	// BatchSize is the number of templates sent in each embedding call
	BatchSize int

	// ReportInterval is how often to report progress (number of templates)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Normalize stores unit vectors instead of the model's raw output
	Normalize bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 32,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Builder embeds a template corpus into a core.TemplateStore.
type Builder struct {
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewBuilder creates a new store builder.
// progress: where to write progress output (typically os.Stderr); may be nil
func NewBuilder(embedder ai.Embedder, config *Config, progress io.Writer) *Builder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Builder{
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay, config.Normalize),
		logger:    slog.Default().With("component", "store-builder"),
	}
}

// Build embeds every text of corpus. Entry ids are corpus positions and the
// store is tagged with the embedder's model and the embedding dimension.
func (b *Builder) Build(ctx context.Context, corpus []string) (*core.TemplateStore, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	b.logger.Info("building template store", "templates", len(corpus), "batch_size", b.config.BatchSize, "model", b.embedder.Model())

	tracker := NewProgressTracker(b.progress, len(corpus), b.config.ReportInterval)
	tracker.Start()

	store := &core.TemplateStore{
		Model:   b.embedder.Model(),
		Entries: make([]core.TemplateEntry, 0, len(corpus)),
	}

	for start, batch := range Batches(corpus, b.config.BatchSize) {
		embeddings, attempts, err := b.processor.Process(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch starting at %d: %w", start, err)
		}

		for i, vector := range embeddings {
			id := start + i
			if len(vector) == 0 {
				return nil, fmt.Errorf("template %d: %w", id, core.ErrEmptyEmbedding)
			}
			if store.Dimension == 0 {
				store.Dimension = len(vector)
			}
			if len(vector) != store.Dimension {
				return nil, fmt.Errorf("template %d has dimension %d, expected %d: %w",
					id, len(vector), store.Dimension, core.ErrDimensionMismatch)
			}
			store.Entries = append(store.Entries, core.TemplateEntry{
				Id:        id,
				Email:     batch[i],
				Embedding: vector,
			})
		}

		tracker.BatchDone(len(batch), attempts)
	}

	stats := tracker.Finish()
	b.logger.Info("template store built", "templates", store.Len(), "dimension", store.Dimension,
		"batches", stats.Batches, "retries", stats.Retries, "elapsed", stats.Elapsed.Round(time.Millisecond))

	return store, nil
}
