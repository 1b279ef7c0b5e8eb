package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/coldmail/ai"
)

// BatchProcessor embeds batches of template texts.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	normalize      bool
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding API call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration, normalize bool) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		normalize:      normalize,
	}
}

// Process returns one embedding per text, in input order, and the number of
// embedding calls it took.
func (bp *BatchProcessor) Process(ctx context.Context, texts []string) ([][]float32, int, error) {
	if len(texts) == 0 {
		return nil, 0, nil
	}

	var embeddings [][]float32
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(embeddings) != len(texts) {
			return Permanent(fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCount, len(texts), len(embeddings)))
		}
		return nil
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, attempts, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if bp.normalize {
		for i := range embeddings {
			embeddings[i] = NormalizeVector(embeddings[i])
		}
	}

	return embeddings, attempts, nil
}
