package outreach

import "errors"

var (
	// ErrSnapshotRequired is returned when no template store snapshot is provided.
	ErrSnapshotRequired = errors.New("template store snapshot required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRetrievalFailed wraps any failure to pick a template email.
	ErrRetrievalFailed = errors.New("template retrieval failed")

	// ErrGenerationFailed wraps any failure of the text generator.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrUnsupportedMode is returned when no variant mode matches a tone and focus.
	ErrUnsupportedMode = errors.New("unsupported tone or focus")

	// ErrUnparsableReply is returned when a generated variant has no body.
	ErrUnparsableReply = errors.New("could not extract email body")

	// ErrNoVariants is returned when there is nothing to merge.
	ErrNoVariants = errors.New("no variants to merge")
)
