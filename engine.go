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


package coldmail

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/coldmail/ai"
	"github.com/poiesic/coldmail/ai/openai"
	"github.com/poiesic/coldmail/config"
	"github.com/poiesic/coldmail/core"
	"github.com/poiesic/coldmail/normalize"
	"github.com/poiesic/coldmail/outreach"
	"github.com/poiesic/coldmail/reembed"
	"github.com/poiesic/coldmail/search"
	"github.com/poiesic/coldmail/storage"
	"github.com/poiesic/coldmail/storage/badger"
	"github.com/poiesic/coldmail/storage/jsonfile"
)

type Engine struct {
	cfg        *config.Config
	repos      *badger.Repositories
	provider   ai.AIProvider
	embedder   ai.Embedder
	snapshot   *storage.Snapshot
	retriever  *search.Retriever
	normalizer *normalize.Normalizer
	pipeline   *outreach.Pipeline
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithProvider uses provider instead of building an OpenAI-compatible one
// from the configuration. The engine closes it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemoryHistory keeps draft history and the embedding cache in memory.
func WithInMemoryHistory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine wires storage, AI services, the template snapshot, the retriever
// and the outreach pipeline from cfg. The template store is loaded lazily on
// first use so a store can be built with a fresh engine.
func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if cfg == nil {
		defaults, err := config.Default()
		if err != nil {
			return nil, err
		}
		cfg = defaults
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	normalizerOpts, err := cfg.NormalizerOptions()
	if err != nil {
		return nil, err
	}

	var repos *badger.Repositories
	if options.inMemory || cfg.Database == "" {
		repos, err = badger.NewMemoryRepositories()
	} else {
		repos, err = badger.NewRepositories(cfg.Database)
	}
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(cfg.AIOptions())
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	e := &Engine{
		cfg:        cfg,
		repos:      repos,
		provider:   provider,
		embedder:   provider.Embedder(),
		normalizer: normalize.New(normalizerOpts...),
		logger:     options.logger.With("component", "engine"),
	}
	if cfg.Retrieval.CacheEmbeddings {
		e.embedder = ai.NewCachedEmbedder(e.embedder, repos.Vectors)
	}

	e.snapshot = storage.NewSnapshot(func(context.Context) (*core.TemplateStore, error) {
		return jsonfile.Load(cfg.Store)
	})

	e.retriever, err = search.NewRetriever(e.embedder,
		search.WithLogger(options.logger),
		search.WithEmbedTimeout(cfg.Retrieval.EmbedTimeout.Std()),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.pipeline, err = outreach.NewPipeline(e.snapshot, provider,
		outreach.WithRetriever(e.retriever),
		outreach.WithNormalizer(e.normalizer),
		outreach.WithHistory(repos.Drafts),
		outreach.WithModes(cfg.VariantModes()),
		outreach.WithPoolSize(cfg.Outreach.PoolSize),
		outreach.WithLogger(options.logger),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

// Close releases the pipeline, the AI provider and the database.
func (e *Engine) Close() error {
	if e.pipeline != nil {
		e.pipeline.Release()
	}

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.repos.Close(); err != nil {
		e.logger.Error("error closing repositories", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) Pipeline() *outreach.Pipeline {
	return e.pipeline
}

func (e *Engine) Retriever() *search.Retriever {
	return e.retriever
}

func (e *Engine) Normalizer() *normalize.Normalizer {
	return e.normalizer
}

func (e *Engine) History() storage.DraftRepository {
	return e.repos.Drafts
}

// Store returns the template store, loading it on first use.
func (e *Engine) Store(ctx context.Context) (*core.TemplateStore, error) {
	return e.snapshot.Load(ctx)
}

// ReloadStore re-reads the template store from disk and makes it current.
func (e *Engine) ReloadStore(ctx context.Context) (*core.TemplateStore, error) {
	return e.snapshot.Reload(ctx)
}

// Retrieve returns the template most similar to the company.
func (e *Engine) Retrieve(ctx context.Context, record *core.CompanyRecord) (*core.Match, error) {
	store, err := e.snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	return e.retriever.BestMatchInStore(ctx, e.normalizer.Normalize(record), store)
}

// Rank returns the k templates most similar to the company.
func (e *Engine) Rank(ctx context.Context, record *core.CompanyRecord, k int) ([]core.Match, error) {
	store, err := e.snapshot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.snapshot.CheckModel(e.embedder.Model()); err != nil {
		return nil, err
	}
	return e.retriever.Rank(ctx, e.normalizer.Normalize(record), store.Entries, k)
}

// BuildStore embeds corpus, writes the store to the configured path and
// makes it current.
func (e *Engine) BuildStore(ctx context.Context, corpus []string, progress io.Writer) (*core.TemplateStore, error) {
	builder := reembed.NewBuilder(e.embedder, e.cfg.BuilderConfig(), progress)
	store, err := builder.Build(ctx, corpus)
	if err != nil {
		return nil, err
	}

	if err := jsonfile.Write(e.cfg.Store, store); err != nil {
		return nil, fmt.Errorf("writing template store: %w", err)
	}
	e.logger.Info("template store written", "path", e.cfg.Store, "templates", store.Len())

	return e.snapshot.Reload(ctx)
}
