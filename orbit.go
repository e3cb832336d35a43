// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bioorbit wires the candidate catalog, the ranking engine, the
// AI analysis adapter and the structure viewer into one session object.
package bioorbit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/analysis"
	"github.com/poiesic/bioorbit/catalog"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/ingestion"
	"github.com/poiesic/bioorbit/ranking"
	"github.com/poiesic/bioorbit/storage"
	"github.com/poiesic/bioorbit/storage/badger"
	"github.com/poiesic/bioorbit/viewer"
)

// Orbit is a loaded search session. The candidate pool is fixed once Open
// returns.
type Orbit struct {
	backend    *badger.Backend
	repo       storage.CandidateRepository
	provider   ai.AIProvider
	pool       *catalog.Pool
	engine     *ranking.Engine
	analyzer   *analysis.Analyzer
	dispatcher *analysis.Dispatcher
	viewer     *viewer.Viewer
	logger     *slog.Logger
}

// Option configures Open.
type Option func(*options) error

type options struct {
	candidates      []*core.Candidate
	catalogPath     string
	provider        ai.AIProvider
	missing         ranking.MissingStabilityPolicy
	minSimilarity   float32
	analysisTimeout time.Duration
	viewerBaseURL   string
	progress        io.Writer
	logger          *slog.Logger
}

// WithCandidates uses candidates instead of the embedded seed catalog.
func WithCandidates(candidates []*core.Candidate) Option {
	return func(o *options) error {
		o.candidates = candidates
		return nil
	}
}

// WithCatalogFile loads the candidate pool from a YAML file.
func WithCatalogFile(path string) Option {
	return func(o *options) error {
		o.catalogPath = path
		return nil
	}
}

// WithProvider sets the AI provider. When the provider has an embedder,
// candidates are embedded at load and searches use vector relevance.
// Default is a Gemini provider without embeddings.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) error {
		o.provider = provider
		return nil
	}
}

// WithMissingStability sets how candidates without a ΔG are filtered.
func WithMissingStability(policy ranking.MissingStabilityPolicy) Option {
	return func(o *options) error {
		o.missing = policy
		return nil
	}
}

// WithMinSimilarity sets the cosine cutoff for vector relevance.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(o *options) error {
		o.minSimilarity = minSimilarity
		return nil
	}
}

// WithAnalysisTimeout bounds each generation request.
func WithAnalysisTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return fmt.Errorf("analysis timeout must be positive, got %v", timeout)
		}
		o.analysisTimeout = timeout
		return nil
	}
}

// WithViewerBaseURL overrides the iCn3D viewer location.
func WithViewerBaseURL(baseURL string) Option {
	return func(o *options) error {
		o.viewerBaseURL = baseURL
		return nil
	}
}

// WithIngestProgress writes embedding progress to w while the catalog loads.
func WithIngestProgress(w io.Writer) Option {
	return func(o *options) error {
		o.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// Open loads the catalog into an in-memory store, embeds it when an
// embedder is available and prepares the search and analysis components.
func Open(ctx context.Context, opts ...Option) (*Orbit, error) {
	o := &options{
		missing:         ranking.TreatMissingAsZero,
		analysisTimeout: analysis.DefaultTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	candidates, err := loadCandidates(o)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = NewProvider(ai.DefaultConfig(), false)
		if err != nil {
			return nil, err
		}
	}

	repo, backend, err := badger.NewMemoryRepository()
	if err != nil {
		return nil, err
	}

	orbit := &Orbit{
		backend:  backend,
		repo:     repo,
		provider: provider,
		logger:   o.logger.With("component", "orbit"),
	}
	if err := orbit.load(ctx, o, candidates); err != nil {
		orbit.Close()
		return nil, err
	}
	return orbit, nil
}

func loadCandidates(o *options) ([]*core.Candidate, error) {
	switch {
	case o.candidates != nil:
		return o.candidates, nil
	case o.catalogPath != "":
		return catalog.LoadFile(o.catalogPath)
	default:
		return catalog.Seed()
	}
}

func (o *Orbit) load(ctx context.Context, opts *options, candidates []*core.Candidate) error {
	embedder := o.provider.Embedder()

	pipeline, err := ingestion.NewPipeline(o.repo, embedder,
		ingestion.WithProgress(opts.progress),
		ingestion.WithLogger(opts.logger))
	if err != nil {
		return err
	}
	result, err := pipeline.Ingest(ctx, candidates)
	pipeline.Release()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if result.Failed > 0 {
		o.logger.Warn("some candidates have no embedding", "failed", result.Failed)
	}

	stored, err := o.repo.ListCandidates(ctx)
	if err != nil {
		return err
	}
	o.pool = catalog.NewPool(stored)

	engineOpts := []ranking.Option{
		ranking.WithMissingStability(opts.missing),
		ranking.WithLogger(opts.logger),
	}
	if embedder != nil {
		relevance, err := ranking.NewEmbeddingRelevance(embedder, o.repo, opts.minSimilarity)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, ranking.WithRelevance(relevance))
	}
	if o.engine, err = ranking.NewEngine(engineOpts...); err != nil {
		return err
	}

	o.analyzer, err = analysis.NewAnalyzer(o.provider,
		analysis.WithTimeout(opts.analysisTimeout),
		analysis.WithLogger(opts.logger))
	if err != nil {
		return err
	}
	if o.dispatcher, err = analysis.NewDispatcher(o.analyzer, analysis.WithDispatcherLogger(opts.logger)); err != nil {
		return err
	}

	if o.viewer, err = viewer.New(opts.viewerBaseURL); err != nil {
		return err
	}

	o.logger.Info("catalog loaded", "candidates", o.pool.Len(), "embedded", embedder != nil)
	return nil
}

// Close stops outstanding analyses and releases the store.
func (o *Orbit) Close() error {
	if o.dispatcher != nil {
		o.dispatcher.Release()
	}
	if err := o.provider.Close(); err != nil {
		o.logger.Error("error closing AI provider", "err", err)
	}
	if err := o.repo.Close(); err != nil {
		o.logger.Error("error closing candidate repository", "err", err)
		return err
	}
	if err := o.backend.Close(); err != nil {
		o.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Candidates returns the pool in catalog order.
func (o *Orbit) Candidates() []*core.Candidate {
	return o.pool.Candidates()
}

// Candidate looks up a pool entry by ID.
func (o *Orbit) Candidate(id string) (*core.Candidate, error) {
	c, ok := o.pool.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCandidate, id)
	}
	return c, nil
}

// Search validates params and ranks the pool against them.
func (o *Orbit) Search(ctx context.Context, params core.SearchParams) ([]*core.Candidate, error) {
	if err := core.ValidateSearchParams(params); err != nil {
		return nil, err
	}
	return o.engine.Select(ctx, o.pool.Candidates(), params), nil
}

// Analyze runs a synchronous analysis of the candidate with id. An empty
// credential yields the offline analysis.
func (o *Orbit) Analyze(ctx context.Context, id, credential string) (analysis.Report, error) {
	c, err := o.Candidate(id)
	if err != nil {
		return analysis.Report{}, err
	}
	return o.analyzer.AnalyzeWithOutcome(ctx, c, credential), nil
}

// AnalyzeAsync queues an analysis. Only the latest request for a candidate
// is ever delivered.
func (o *Orbit) AnalyzeAsync(ctx context.Context, id, credential string, deliver analysis.DeliverFunc) (analysis.Ticket, error) {
	c, err := o.Candidate(id)
	if err != nil {
		return analysis.Ticket{}, err
	}
	return o.dispatcher.Submit(ctx, c, credential, deliver)
}

// CancelAnalysis abandons the outstanding analysis for id, if any.
func (o *Orbit) CancelAnalysis(id string) {
	o.dispatcher.Cancel(id)
}

// WaitAnalyses blocks until queued analyses finish.
func (o *Orbit) WaitAnalyses() {
	o.dispatcher.Wait()
}

// View returns the structure viewer frame for the candidate with id.
func (o *Orbit) View(id string) (viewer.Frame, error) {
	c, err := o.Candidate(id)
	if err != nil {
		return viewer.Frame{}, err
	}
	if c.StructureID == "" {
		return viewer.Frame{}, fmt.Errorf("%w: %q", ErrNoStructure, id)
	}
	return o.viewer.Embed(c.StructureID)
}
