package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/core"
)

// DefaultTimeout bounds a live analysis when no other timeout is configured.
const DefaultTimeout = 30 * time.Second

// Outcome identifies which terminal state an analysis reached.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFallback
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFallback:
		return "fallback"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Report is an Analysis together with how it was obtained. Err holds the
// cause when Outcome is OutcomeFailed.
type Report struct {
	Analysis core.Analysis
	Outcome  Outcome
	Err      error
}

// Analyzer produces candidate analyses through an ai.AIProvider.
type Analyzer struct {
	provider ai.AIProvider
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithTimeout bounds each live analysis. Non-positive values select DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Analyzer) error {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		a.timeout = timeout
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(provider ai.AIProvider, opts ...Option) (*Analyzer, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Analyzer{
		provider: provider,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "analysis")
	return a, nil
}

// Analyze returns an analysis of c. It never fails; see AnalyzeWithOutcome
// to learn whether the result is live, offline or the failure placeholder.
func (a *Analyzer) Analyze(ctx context.Context, c *core.Candidate, credential string) core.Analysis {
	return a.AnalyzeWithOutcome(ctx, c, credential).Analysis
}

// AnalyzeWithOutcome is Analyze with the terminal state attached.
func (a *Analyzer) AnalyzeWithOutcome(ctx context.Context, c *core.Candidate, credential string) Report {
	if strings.TrimSpace(credential) == "" {
		return Report{Analysis: OfflineAnalysis(), Outcome: OutcomeFallback}
	}
	if c == nil {
		return a.failed(ErrNilCandidate, "")
	}

	analysis, err := a.generate(ctx, c, credential)
	if err != nil {
		return a.failed(err, c.ID)
	}

	a.logger.Debug("analysis generated", "candidate", c.ID, "risk", analysis.RiskLevel, "steps", len(analysis.NextSteps))
	return Report{Analysis: analysis, Outcome: OutcomeSucceeded}
}

func (a *Analyzer) failed(err error, candidateID string) Report {
	a.logger.Error("analysis failed", "candidate", candidateID, "err", err)
	return Report{Analysis: FailureAnalysis(), Outcome: OutcomeFailed, Err: err}
}

type generation struct {
	text string
	err  error
}

// generate runs the model call under the analyzer timeout. The call is
// abandoned when the deadline passes even if the generator ignores ctx.
func (a *Analyzer) generate(ctx context.Context, c *core.Candidate, credential string) (core.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	gen, err := a.provider.Generator(ctx, credential)
	if err != nil {
		return core.Analysis{}, fmt.Errorf("creating generator: %w", err)
	}

	done := make(chan generation, 1)
	// the goroutine owns gen; an abandoned call closes it once it returns
	go func() {
		text, err := gen.GenerateJSON(ctx, systemInstruction, buildPrompt(c))
		if cerr := gen.Close(); cerr != nil {
			a.logger.Debug("error closing generator", "candidate", c.ID, "err", cerr)
		}
		done <- generation{text: text, err: err}
	}()

	var result generation
	select {
	case <-ctx.Done():
		return core.Analysis{}, ctx.Err()
	case result = <-done:
	}
	if result.err != nil {
		return core.Analysis{}, result.err
	}
	if strings.TrimSpace(result.text) == "" {
		return core.Analysis{}, ai.ErrEmptyResponse
	}

	analysis, err := parseAnalysis(result.text)
	if err != nil {
		a.logger.Warn("unparseable analysis reply", "candidate", c.ID, "reply", result.text)
		return core.Analysis{}, err
	}
	return analysis, nil
}
