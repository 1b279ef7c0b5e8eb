package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/coldmail/ai"
	"github.com/poiesic/coldmail/core"
)

// Retriever finds the template whose embedding is most similar to a query.
// It holds no per-request state and is safe for concurrent use.
type Retriever struct {
	embedder     ai.Embedder
	embedTimeout time.Duration
	monitor      RetrievalMonitor
	logger       *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

// WithEmbedTimeout bounds the query embedding call. Zero means no bound
// beyond the caller's context.
func WithEmbedTimeout(d time.Duration) Option {
	return func(r *Retriever) error {
		if d < 0 {
			return fmt.Errorf("embed timeout must not be negative: %s", d)
		}
		r.embedTimeout = d
		return nil
	}
}

// WithMonitor sets the default monitor used for every retrieval.
func WithMonitor(monitor RetrievalMonitor) Option {
	return func(r *Retriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewRetriever creates a retriever that embeds queries with embedder.
func NewRetriever(embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		embedder: embedder,
		monitor:  &noopMonitor{},
		logger:   slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// RetrieveMostSimilar returns the email of the entry most similar to
// queryText. Ties keep the entry that comes first in store order.
func (r *Retriever) RetrieveMostSimilar(ctx context.Context, queryText string, entries []core.TemplateEntry) (string, error) {
	match, err := r.BestMatch(ctx, queryText, entries)
	if err != nil {
		return "", err
	}
	return match.Entry.Email, nil
}

// BestMatch is RetrieveMostSimilar returning the full match.
func (r *Retriever) BestMatch(ctx context.Context, queryText string, entries []core.TemplateEntry) (*core.Match, error) {
	return r.BestMatchWithMonitor(ctx, queryText, entries, r.monitor)
}

// BestMatchWithMonitor runs BestMatch reporting each step to monitor.
func (r *Retriever) BestMatchWithMonitor(ctx context.Context, queryText string, entries []core.TemplateEntry, monitor RetrievalMonitor) (match *core.Match, err error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(queryText, len(entries))
	defer func() { monitor.Finish(match, err) }()

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: template store is empty", core.ErrNotFound)
	}

	query, err := r.embedQuery(ctx, queryText)
	if err != nil {
		return nil, err
	}
	monitor.AfterEmbedding(len(query))

	return bestOf(query, entries, monitor)
}

// BestMatchInStore checks the store's model tag against the embedder and
// then runs BestMatch over its entries.
func (r *Retriever) BestMatchInStore(ctx context.Context, queryText string, store *core.TemplateStore) (*core.Match, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if store.Model != "" && store.Model != r.embedder.Model() {
		return nil, fmt.Errorf("%w: store built with %q, embedder is %q",
			core.ErrModelMismatch, store.Model, r.embedder.Model())
	}
	return r.BestMatch(ctx, queryText, store.Entries)
}

// Rank returns up to k matches ordered by descending score; entries with
// equal scores keep store order. k <= 0 returns every entry.
func (r *Retriever) Rank(ctx context.Context, queryText string, entries []core.TemplateEntry, k int) ([]core.Match, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: template store is empty", core.ErrNotFound)
	}

	query, err := r.embedQuery(ctx, queryText)
	if err != nil {
		return nil, err
	}

	return RankVector(query, entries, k)
}

// MatchVector finds the best entry for an already embedded query.
func MatchVector(query []float32, entries []core.TemplateEntry) (*core.Match, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: template store is empty", core.ErrNotFound)
	}
	return bestOf(query, entries, &noopMonitor{})
}

// RankVector ranks entries against an already embedded query.
func RankVector(query []float32, entries []core.TemplateEntry, k int) ([]core.Match, error) {
	type scored struct {
		match core.Match
		key   float64
	}

	all := make([]scored, 0, len(entries))
	for i := range entries {
		score, defined, err := scoreEntry(query, &entries[i], i)
		if err != nil {
			return nil, err
		}
		all = append(all, scored{
			match: core.Match{Entry: entries[i], Index: i, Score: reportedScore(score, defined)},
			key:   rankKey(score, defined),
		})
	}

	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.key > b.key:
			return -1
		case a.key < b.key:
			return 1
		default:
			return 0
		}
	})

	if k <= 0 || k > len(all) {
		k = len(all)
	}
	matches := make([]core.Match, k)
	for i := range matches {
		matches[i] = all[i].match
	}
	return matches, nil
}

func (r *Retriever) embedQuery(ctx context.Context, queryText string) ([]float32, error) {
	if r.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.embedTimeout)
		defer cancel()
	}

	query, err := r.embedder.EmbedText(ctx, queryText)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedderUnavailable, err)
	}
	if len(query) == 0 {
		r.logger.Error("embedder returned an empty vector")
		return nil, fmt.Errorf("%w: empty query vector", core.ErrEmbedderUnavailable)
	}
	return query, nil
}

func bestOf(query []float32, entries []core.TemplateEntry, monitor RetrievalMonitor) (*core.Match, error) {
	best := -1
	var bestScore float64
	var bestDefined bool

	for i := range entries {
		score, defined, err := scoreEntry(query, &entries[i], i)
		if err != nil {
			return nil, err
		}
		monitor.Scored(i, score, defined)

		// Strict comparison keeps the first of equal scores.
		if best < 0 || rankKey(score, defined) > rankKey(bestScore, bestDefined) {
			best, bestScore, bestDefined = i, score, defined
		}
	}

	return &core.Match{
		Entry: entries[best],
		Index: best,
		Score: reportedScore(bestScore, bestDefined),
	}, nil
}

func scoreEntry(query []float32, entry *core.TemplateEntry, index int) (float64, bool, error) {
	if len(entry.Embedding) != len(query) {
		return 0, false, fmt.Errorf("%w: query has %d dimensions, entry %d (id %d) has %d",
			core.ErrDimensionMismatch, len(query), index, entry.Id, len(entry.Embedding))
	}
	score, defined := CosineSimilarity(query, entry.Embedding)
	return score, defined, nil
}
