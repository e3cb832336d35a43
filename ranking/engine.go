package ranking

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/bioorbit/core"
)

// DiversityThreshold is the Diversity above which results are re-ranked
// for variety instead of sorted purely by score.
const DiversityThreshold = 0.7

// Engine selects and orders candidates for a query.
// An Engine is safe for concurrent use once constructed.
type Engine struct {
	relevance  Relevance
	similarity Similarity
	policy     MissingStabilityPolicy
	monitor    SelectMonitor
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithRelevance replaces the default KeywordRelevance.
func WithRelevance(r Relevance) Option {
	return func(e *Engine) error {
		if r == nil {
			r = KeywordRelevance{}
		}
		e.relevance = r
		return nil
	}
}

// WithSimilarity replaces the default FeatureSimilarity used for diversified ordering.
func WithSimilarity(s Similarity) Option {
	return func(e *Engine) error {
		if s == nil {
			s = FeatureSimilarity{}
		}
		e.similarity = s
		return nil
	}
}

// WithMissingStability sets how candidates without a ΔG are filtered.
// Default is TreatMissingAsZero.
func WithMissingStability(policy MissingStabilityPolicy) Option {
	return func(e *Engine) error {
		switch policy {
		case TreatMissingAsZero, IncludeMissing, ExcludeMissing:
			e.policy = policy
			return nil
		}
		return ErrInvalidPolicy
	}
}

// WithMonitor installs a monitor that observes every Select call.
func WithMonitor(m SelectMonitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = &noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an Engine with keyword relevance and feature similarity.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		relevance:  KeywordRelevance{},
		similarity: FeatureSimilarity{},
		policy:     TreatMissingAsZero,
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "ranking")
	return e, nil
}

// Select returns the candidates of pool that match params, best first.
// It always returns a non-nil slice. Neither pool nor its candidates are
// modified. If the configured Relevance fails, keyword relevance is used
// for this call.
func (e *Engine) Select(ctx context.Context, pool []*core.Candidate, params core.SearchParams) []*core.Candidate {
	e.monitor.Start(params, len(pool))

	matches, err := e.relevance.Match(ctx, params.Query, pool)
	if err != nil {
		e.logger.Warn("relevance failed, falling back to keywords", "query", params.Query, "err", err)
		e.monitor.RelevanceFallback(err)
		matches, _ = KeywordRelevance{}.Match(ctx, params.Query, pool)
	}
	e.monitor.AfterRelevance(matches)

	kept := make([]*core.Match, 0, len(matches))
	for _, m := range matches {
		if passesStability(m.Candidate, params.MinDeltaG, e.policy) {
			kept = append(kept, m)
		}
	}
	e.monitor.AfterStability(kept)

	slices.SortStableFunc(kept, func(a, b *core.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	diversified := params.Diversity > DiversityThreshold
	if diversified {
		lambda := min(max(1-params.Diversity, 0), 1)
		kept = diversify(kept, lambda, e.similarity)
	}
	e.monitor.AfterOrdering(diversified, kept)

	if params.Limit > 0 && len(kept) > params.Limit {
		kept = kept[:params.Limit]
	}

	results := make([]*core.Candidate, len(kept))
	for i, m := range kept {
		results[i] = m.Candidate
	}

	e.logger.Debug("selected candidates",
		"query", params.Query,
		"pool", len(pool),
		"matched", len(matches),
		"returned", len(results),
		"diversified", diversified)
	e.monitor.Finish(results)
	return results
}
