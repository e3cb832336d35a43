package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage"
)

const (
	defaultBatchSize   = 16
	defaultMaxAttempts = 3
	defaultBaseDelay   = 250 * time.Millisecond
)

// Pipeline stores catalog candidates and embeds their chunks.
type Pipeline struct {
	repo        storage.CandidateRepository
	embedder    ai.Embedder
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	progressOut io.Writer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are sent to the embedder per request.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRetry sets the attempt budget and initial backoff for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithProgress writes a status line to w as embedding batches finish.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progressOut = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. embedder may be nil, in
// which case candidates are stored without vectors.
func NewPipeline(repo storage.CandidateRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repo:        repo,
		embedder:    embedder,
		pool:        pool,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Result summarizes one Ingest call.
type Result struct {
	Added    int
	Embedded int
	// Failed counts candidates whose batch could not be embedded.
	Failed int
}

// Ingest stores the candidates and, when an embedder is configured, embeds
// their chunks before returning. Storage errors abort the call. Embedding
// errors are logged and reported through Result.Failed only.
func (p *Pipeline) Ingest(ctx context.Context, candidates []*core.Candidate) (*Result, error) {
	added, err := p.repo.AddCandidates(ctx, candidates...)
	if err != nil {
		return nil, err
	}

	result := &Result{Added: len(added)}
	if p.embedder == nil || len(added) == 0 {
		p.logger.Info("ingested candidates", "added", result.Added, "embedded", 0)
		return result, nil
	}

	batcher := &batchEmbedder{
		repo:        p.repo,
		embedder:    p.embedder,
		maxAttempts: p.maxAttempts,
		baseDelay:   p.baseDelay,
		logger:      p.logger,
	}

	prog := newProgress(p.progressOut, len(added))
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		submitErr error
	)
	for start := 0; start < len(added); start += p.batchSize {
		batch := added[start:min(start+p.batchSize, len(added))]
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			err := batcher.process(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			prog.batchDone(len(batch), err == nil)
			if err != nil {
				p.logger.Warn("failed to embed batch", "size", len(batch), "first", batch[0].ID, "error", err)
				result.Failed += len(batch)
				return
			}
			result.Embedded += len(batch)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			submitErr = errors.Join(submitErr, err)
			result.Failed += len(batch)
			mu.Unlock()
			prog.batchDone(len(batch), false)
		}
	}
	wg.Wait()
	prog.finish()

	p.logger.Info("ingested candidates", "added", result.Added, "embedded", result.Embedded, "failed", result.Failed)
	return result, submitErr
}

// Release releases the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
