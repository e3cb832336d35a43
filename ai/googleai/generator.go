package googleai

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/bioorbit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Generator implements ai.Generator against the Gemini API.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

func newGenerator(ctx context.Context, config *ai.Config, credential string) (*Generator, error) {
	if credential == "" {
		return nil, ai.ErrCredentialRequired
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(credential),
		googleai.WithDefaultModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return newGeneratorWithModel(client), nil
}

func newGeneratorWithModel(model llms.Model) *Generator {
	return &Generator{
		client: model,
		logger: slog.Default().With("component", "googleai-generator"),
	}
}

// NewGenerator creates a Gemini generator authenticated with credential.
func NewGenerator(ctx context.Context, config *ai.Config, credential string) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newGenerator(ctx, config, credential)
}

// GenerateJSON asks Gemini for an application/json reply.
func (g *Generator) GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := g.client.GenerateContent(ctx, content, llms.WithJSONMode())
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 || response.Choices[0].Content == "" {
		g.logger.Debug("no choices returned from model")
		return "", ai.ErrEmptyResponse
	}

	return response.Choices[0].Content, nil
}

// Close shuts down the underlying Gemini client.
func (g *Generator) Close() error {
	if closer, ok := g.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
