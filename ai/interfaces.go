package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces structured text completions.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateJSON sends a system instruction and a prompt to the model and
	// asks for a JSON-formatted reply. The raw reply text is returned
	// unparsed; callers own the decoding since the reply shape is not
	// guaranteed.
	// Returns ErrEmptyResponse if the model produced no text.
	GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error)

	// Close releases the connection behind the generator. The generator
	// must not be used afterwards.
	Close() error
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service, or nil when embeddings
	// are not configured.
	Embedder() Embedder

	// Generator returns a text generator authenticated with the given
	// credential. Credentials are supplied per request, so a generator is
	// built per call and the caller must Close it when done.
	Generator(ctx context.Context, credential string) (Generator, error)

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
