package googleai

import (
	"context"
	"log/slog"

	"github.com/poiesic/bioorbit/ai"
)

// Provider implements ai.AIProvider with Gemini generation and an optional
// externally supplied embedder.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewProvider validates config and returns a Gemini-backed provider.
// embedder may be nil.
func NewProvider(config *ai.Config, embedder ai.Embedder) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Provider{
		config:   config,
		embedder: embedder,
		logger:   slog.Default().With("component", "googleai-provider"),
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Generator(ctx context.Context, credential string) (ai.Generator, error) {
	return newGenerator(ctx, p.config, credential)
}

func (p *Provider) Close() error {
	p.logger.Debug("closing googleai provider")
	return nil
}
