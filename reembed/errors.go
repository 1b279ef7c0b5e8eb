package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyCorpus is returned when there is nothing to embed.
	ErrEmptyCorpus = errors.New("template corpus is empty")

	// ErrEmbeddingCount is returned when the embedder returns a different
	// number of vectors than texts it was given.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)

// permanentError marks an error that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryWithBackoff returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
