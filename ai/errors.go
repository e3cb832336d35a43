package ai

import "errors"

var (
	// ErrEmptyResponse is returned when a model reply carries no text.
	ErrEmptyResponse = errors.New("no response text from model")

	// ErrCredentialRequired is returned when a generator is requested without a credential.
	ErrCredentialRequired = errors.New("credential required")

	// ErrEmbeddingsDisabled is returned when embeddings are requested but not configured.
	ErrEmbeddingsDisabled = errors.New("embeddings not configured")
)
