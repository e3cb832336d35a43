package bioorbit

import (
	"fmt"

	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/ai/googleai"
	"github.com/poiesic/bioorbit/ai/openai"
)

// NewProvider builds the AI provider selected by config.Backend. When
// embeddings is true the provider also embeds text against the configured
// OpenAI-compatible embedding host, whatever the generation backend.
func NewProvider(config *ai.Config, embeddings bool) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if embeddings {
		if err := config.ValidateEmbedding(); err != nil {
			return nil, err
		}
	}

	switch config.Backend {
	case ai.BackendOpenAI:
		return openai.NewProvider(config, openai.WithEmbeddings(embeddings))
	case ai.BackendGoogleAI:
		var embedder ai.Embedder
		if embeddings {
			e, err := openai.NewEmbedder(config)
			if err != nil {
				return nil, fmt.Errorf("creating embedder: %w", err)
			}
			embedder = e
		}
		return googleai.NewProvider(config, embedder)
	}
	return nil, fmt.Errorf("unsupported backend %q", config.Backend)
}
