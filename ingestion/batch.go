package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage"
)

// batchEmbedder embeds one batch of candidates and writes the vectors back.
type batchEmbedder struct {
	repo        storage.CandidateRepository
	embedder    ai.Embedder
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// process embeds the chunk text of each candidate. Vectors are normalized
// to unit length before they are stored.
func (b *batchEmbedder) process(ctx context.Context, batch []*core.Candidate) error {
	if len(batch) == 0 {
		return nil
	}

	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, b.logger, func() error {
		var err error
		embeddings, err = b.embedder.EmbedTexts(ctx, texts)
		return err
	}, b.maxAttempts, b.baseDelay)
	if err != nil {
		return fmt.Errorf("embedding failed after %d attempts: %w", b.maxAttempts, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(batch), len(embeddings))
	}

	// batch aliases the caller's candidates; vectors go on copies
	embedded := make([]*core.Candidate, len(batch))
	for i, c := range batch {
		cp := *c
		cp.Vector = normalizeVector(embeddings[i])
		embedded[i] = &cp
	}

	if _, err := b.repo.UpdateCandidates(ctx, embedded...); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	return nil
}

// normalizeVector scales v to unit length. A zero vector comes back as zeros.
func normalizeVector(v []float32) []float32 {
	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	magnitude = math.Sqrt(magnitude)
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}
