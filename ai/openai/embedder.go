package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/bioorbit/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// chunkBatchSize caps how many catalog chunks go into one embedding request.
const chunkBatchSize = 64

// Embedder implements ai.Embedder against an OpenAI-compatible embedding
// endpoint. Search queries go through EmbedQuery one at a time; catalog
// chunks go through EmbedDocuments, which splits them into requests of at
// most chunkBatchSize texts.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.ValidateEmbedding(); err != nil {
		return nil, err
	}

	// local OpenAI-compatible servers ignore the token but the client requires one
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	return newEmbedderWithClient(client)
}

func newEmbedderWithClient(client embeddings.EmbedderClient) (*Embedder, error) {
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(chunkBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates an embedder for config.EmbeddingModel.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) (vector []float32, err error) {
	e.logger.Debug("embedding query", "length", len(text))
	// EmbedQuery indexes the reply without checking it
	defer func() {
		if r := recover(); r != nil {
			vector, err = nil, fmt.Errorf("embedding query: %w", ai.ErrEmptyResponse)
		}
	}()
	vector, err = e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to embed query", "err", err)
		return nil, err
	}
	return vector, nil
}

// EmbedTexts embeds catalog chunks. The result is index-aligned with texts.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("embedding chunks", "count", len(texts))

	// newline stripping rewrites the slice in place
	vectors, err := e.embedder.EmbedDocuments(ctx, append([]string(nil), texts...))
	if err != nil {
		e.logger.Error("failed to embed chunks", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding chunks: %w: got %d vectors for %d texts",
			ai.ErrEmptyResponse, len(vectors), len(texts))
	}
	return vectors, nil
}
