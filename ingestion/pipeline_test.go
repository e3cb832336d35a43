package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/bioorbit/ai/mock"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage"
	"github.com/poiesic/bioorbit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) storage.CandidateRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func makeCandidates(n int) []*core.Candidate {
	out := make([]*core.Candidate, n)
	for i := range out {
		out[i] = &core.Candidate{
			ID:    fmt.Sprintf("res-%02d", i),
			Score: 0.5,
			Chunk: core.Chunk{Text: fmt.Sprintf("chunk number %d", i)},
			Type:  core.MoleculeTypeProtein,
		}
	}
	return out
}

func TestNewPipeline(t *testing.T) {
	t.Run("requires repository", func(t *testing.T) {
		_, err := NewPipeline(nil, nil)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})

	t.Run("rejects bad retry budget", func(t *testing.T) {
		_, err := NewPipeline(setupTestRepo(t), nil, WithRetry(0, time.Millisecond))
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})

	t.Run("accepts options", func(t *testing.T) {
		p, err := NewPipeline(setupTestRepo(t), mock.NewMockEmbedder(),
			WithPoolSize(2), WithBatchSize(4), WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()

		assert.Equal(t, 4, p.batchSize)
		assert.NotNil(t, p.logger)
	})
}

func TestIngest_WithoutEmbedder(t *testing.T) {
	repo := setupTestRepo(t)
	p, err := NewPipeline(repo, nil)
	require.NoError(t, err)
	defer p.Release()

	result, err := p.Ingest(context.Background(), makeCandidates(3))
	require.NoError(t, err)
	assert.Equal(t, &Result{Added: 3}, result)

	stored, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, c := range stored {
		assert.Empty(t, c.Vector)
	}
}

func TestIngest_EmbedsAllCandidates(t *testing.T) {
	repo := setupTestRepo(t)
	embedder := mock.NewMockEmbedder()
	p, err := NewPipeline(repo, embedder, WithPoolSize(3), WithBatchSize(4))
	require.NoError(t, err)
	defer p.Release()

	result, err := p.Ingest(context.Background(), makeCandidates(10))
	require.NoError(t, err)
	assert.Equal(t, 10, result.Added)
	assert.Equal(t, 10, result.Embedded)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 3, embedder.CallCount(), "10 candidates in batches of 4")

	stored, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 10)
	for i, c := range stored {
		assert.Equal(t, fmt.Sprintf("res-%02d", i), c.ID, "insertion order kept")
		require.NotEmpty(t, c.Vector)

		var norm float64
		for _, v := range c.Vector {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	}
}

func TestIngest_LeavesInputUntouched(t *testing.T) {
	repo := setupTestRepo(t)
	p, err := NewPipeline(repo, mock.NewMockEmbedder(), WithBatchSize(2))
	require.NoError(t, err)
	defer p.Release()

	candidates := makeCandidates(3)
	_, err = p.Ingest(context.Background(), candidates)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.Nil(t, c.Vector, "input %s was mutated", c.ID)
	}
	stored, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	for _, c := range stored {
		assert.NotEmpty(t, c.Vector, "stored %s", c.ID)
	}
}

func TestIngest_RetriesTransientFailures(t *testing.T) {
	repo := setupTestRepo(t)
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{3, 4}
		}
		return out, nil
	}

	p, err := NewPipeline(repo, embedder, WithPoolSize(1), WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	defer p.Release()

	result, err := p.Ingest(context.Background(), makeCandidates(2))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Embedded)

	c, err := repo.GetCandidate(context.Background(), "res-00")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, c.Vector, 1e-6)
}

func TestIngest_PersistentFailureIsNotFatal(t *testing.T) {
	repo := setupTestRepo(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service unavailable")
	}

	p, err := NewPipeline(repo, embedder, WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	defer p.Release()

	result, err := p.Ingest(context.Background(), makeCandidates(3))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	assert.Zero(t, result.Embedded)
	assert.Equal(t, 3, result.Failed)

	count, err := repo.CountCandidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIngest_CountMismatch(t *testing.T) {
	repo := setupTestRepo(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	p, err := NewPipeline(repo, embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer p.Release()

	result, err := p.Ingest(context.Background(), makeCandidates(2))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
}

func TestIngest_DuplicateAborts(t *testing.T) {
	repo := setupTestRepo(t)
	p, err := NewPipeline(repo, nil)
	require.NoError(t, err)
	defer p.Release()

	candidates := makeCandidates(2)
	_, err = p.Ingest(context.Background(), candidates)
	require.NoError(t, err)

	_, err = p.Ingest(context.Background(), candidates[:1])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestNormalizeVector(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, normalizeVector([]float32{0, 0}))
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, normalizeVector([]float32{3, 4}), 1e-6)
	assert.Empty(t, normalizeVector(nil))
}

func TestIngest_ReportsProgress(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(setupTestRepo(t), mock.NewMockEmbedder(), WithBatchSize(2), WithProgress(&buf))
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Ingest(context.Background(), makeCandidates(5))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "5/5 (100.0%) - 0 failed")
}
