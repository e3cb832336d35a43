package ranking

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/poiesic/bioorbit/ai/mock"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func candidate(id string, score float32, text string, deltaG *float64, tags ...string) *core.Candidate {
	return &core.Candidate{
		ID:     id,
		Score:  score,
		Source: core.Source{Title: "Title " + id},
		Chunk:  core.Chunk{Text: text},
		DeltaG: deltaG,
		Tags:   tags,
		Type:   core.MoleculeTypeProtein,
	}
}

func ids(cs []*core.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e := newEngine(t)
		assert.IsType(t, KeywordRelevance{}, e.relevance)
		assert.IsType(t, FeatureSimilarity{}, e.similarity)
		assert.Equal(t, TreatMissingAsZero, e.policy)
	})

	t.Run("nil options fall back to defaults", func(t *testing.T) {
		e := newEngine(t, WithRelevance(nil), WithSimilarity(nil), WithMonitor(nil), WithLogger(nil))
		assert.IsType(t, KeywordRelevance{}, e.relevance)
		assert.NotNil(t, e.monitor)
	})

	t.Run("invalid policy", func(t *testing.T) {
		_, err := NewEngine(WithMissingStability(MissingStabilityPolicy(42)))
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})
}

func TestSelect_Scenarios(t *testing.T) {
	pool := []*core.Candidate{candidate("A", 0.9, "binding domain", nil)}
	e := newEngine(t)
	ctx := context.Background()

	got := e.Select(ctx, pool, core.SearchParams{Query: "binding", MinDeltaG: 0})
	assert.Equal(t, []string{"A"}, ids(got))

	got = e.Select(ctx, pool, core.SearchParams{Query: "nonexistent", MinDeltaG: 0})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelect_EmptyInputs(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	got := e.Select(ctx, nil, core.DefaultSearchParams())
	assert.NotNil(t, got)
	assert.Empty(t, got)

	pool := []*core.Candidate{
		candidate("A", 0.5, "alpha", ptr(-8)),
		candidate("B", 0.9, "beta", ptr(-6)),
	}
	got = e.Select(ctx, pool, core.SearchParams{Query: "", MinDeltaG: -5})
	assert.Equal(t, []string{"B", "A"}, ids(got), "empty query keeps everything")

	got = e.Select(ctx, pool, core.SearchParams{Query: "   ", MinDeltaG: -5})
	assert.Len(t, got, 2, "whitespace query keeps everything")
}

func TestSelect_KeywordMatching(t *testing.T) {
	pool := []*core.Candidate{
		candidate("chunk", 0.5, "Allosteric BINDING site", nil),
		candidate("title", 0.4, "unrelated", nil),
		candidate("none", 0.3, "unrelated", nil),
	}
	pool[1].Source.Title = "Kinase binding pocket"
	e := newEngine(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive", "binding", []string{"chunk", "title"}},
		{"upper-case query", "BINDING", []string{"chunk", "title"}},
		{"any token", "zzz allosteric", []string{"chunk"}},
		{"substring", "kinas", []string{"title"}},
		{"title only", "pocket", []string{"title"}},
		{"no token matches", "zzz yyy", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Select(context.Background(), pool, core.SearchParams{Query: tt.query, MinDeltaG: 0})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSelect_StabilityFilter(t *testing.T) {
	pool := []*core.Candidate{
		candidate("strong", 0.9, "x", ptr(-12)),
		candidate("edge", 0.8, "x", ptr(-5)),
		candidate("weak", 0.7, "x", ptr(-2)),
		candidate("missing", 0.6, "x", nil),
		candidate("positive", 0.5, "x", ptr(1.5)),
	}

	tests := []struct {
		name      string
		policy    MissingStabilityPolicy
		minDeltaG float64
		want      []string
	}{
		{"inclusive bound", TreatMissingAsZero, -5, []string{"strong", "edge"}},
		{"missing counts as zero", TreatMissingAsZero, 0, []string{"strong", "edge", "weak", "missing"}},
		{"include missing", IncludeMissing, -5, []string{"strong", "edge", "missing"}},
		{"exclude missing", ExcludeMissing, 0, []string{"strong", "edge", "weak"}},
		{"nan disables", TreatMissingAsZero, math.NaN(), []string{"strong", "edge", "weak", "missing", "positive"}},
		{"nothing stable enough", TreatMissingAsZero, -20, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, WithMissingStability(tt.policy))
			got := e.Select(context.Background(), pool, core.SearchParams{MinDeltaG: tt.minDeltaG})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSelect_StabilityProperty(t *testing.T) {
	pool := []*core.Candidate{
		candidate("a", 0.1, "x", ptr(-3)),
		candidate("b", 0.2, "x", nil),
		candidate("c", 0.3, "x", ptr(-9)),
		candidate("d", 0.4, "x", ptr(2)),
		candidate("e", 0.5, "x", ptr(-6.5)),
	}
	e := newEngine(t)

	for _, m := range []float64{-10, -6.5, -5, -3, 0, 1, 3} {
		for _, d := range []float64{0, 0.5, 0.9} {
			got := e.Select(context.Background(), pool, core.SearchParams{MinDeltaG: m, Diversity: d})
			for _, c := range got {
				value := 0.0
				if c.DeltaG != nil {
					value = *c.DeltaG
				}
				assert.LessOrEqual(t, value, m, "candidate %s at threshold %v", c.ID, m)
			}
		}
	}
}

func TestSelect_Ordering(t *testing.T) {
	pool := []*core.Candidate{
		candidate("low", 0.2, "x", nil),
		candidate("tie1", 0.5, "x", nil),
		candidate("high", 0.9, "x", nil),
		candidate("tie2", 0.5, "x", nil),
	}
	e := newEngine(t)

	for _, d := range []float64{0, 0.3, 0.7} {
		got := e.Select(context.Background(), pool, core.SearchParams{Diversity: d, MinDeltaG: 0})
		assert.Equal(t, []string{"high", "tie1", "tie2", "low"}, ids(got), "diversity %v", d)
	}
}

func TestSelect_DiversifiedOrdering(t *testing.T) {
	a := candidate("A", 0.9, "x", nil, "protease")
	b := candidate("B", 0.85, "x", nil, "protease")
	c := candidate("C", 0.8, "x", nil, "double helix")
	c.Type = core.MoleculeTypeDNA
	pool := []*core.Candidate{c, b, a}
	e := newEngine(t)
	ctx := context.Background()

	sorted := e.Select(ctx, pool, core.SearchParams{Diversity: 0.5, MinDeltaG: 0})
	assert.Equal(t, []string{"A", "B", "C"}, ids(sorted))

	diverse := e.Select(ctx, pool, core.SearchParams{Diversity: 0.9, MinDeltaG: 0})
	assert.Equal(t, []string{"A", "C", "B"}, ids(diverse))
	assert.ElementsMatch(t, ids(sorted), ids(diverse), "same result set")

	again := e.Select(ctx, pool, core.SearchParams{Diversity: 0.9, MinDeltaG: 0})
	assert.Equal(t, ids(diverse), ids(again), "diversified ordering is deterministic")
}

func TestSelect_NaNScoreWithDiversity(t *testing.T) {
	pool := []*core.Candidate{
		candidate("A", float32(math.NaN()), "binding", nil),
		candidate("B", 0.5, "binding", nil),
	}
	e := newEngine(t)

	var got []*core.Candidate
	assert.NotPanics(t, func() {
		got = e.Select(context.Background(), pool, core.SearchParams{Query: "binding", Diversity: 0.9, MinDeltaG: 0})
	})
	assert.ElementsMatch(t, []string{"A", "B"}, ids(got))
}

func TestSelect_DiversityNeverChangesSet(t *testing.T) {
	pool := []*core.Candidate{
		candidate("a", 0.1, "binding", ptr(-6), "kinase"),
		candidate("b", 0.7, "binding", ptr(-9), "kinase", "oncology"),
		candidate("c", 0.4, "binding", nil, "dna"),
		candidate("d", 0.9, "other", ptr(-7)),
		candidate("e", 0.3, "binding", ptr(-11), "protease"),
	}
	e := newEngine(t, WithMissingStability(IncludeMissing))
	base := e.Select(context.Background(), pool, core.SearchParams{Query: "binding", MinDeltaG: -5})

	for _, d := range []float64{0.71, 0.8, 0.95, 1.0} {
		got := e.Select(context.Background(), pool, core.SearchParams{Query: "binding", MinDeltaG: -5, Diversity: d})
		assert.ElementsMatch(t, ids(base), ids(got), "diversity %v", d)
	}
}

func TestSelect_Limit(t *testing.T) {
	pool := []*core.Candidate{
		candidate("a", 0.1, "x", nil),
		candidate("b", 0.2, "x", nil),
		candidate("c", 0.3, "x", nil),
	}
	e := newEngine(t)

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{"c", "b", "a"}},
		{-1, []string{"c", "b", "a"}},
		{2, []string{"c", "b"}},
		{10, []string{"c", "b", "a"}},
	}
	for _, tt := range tests {
		got := e.Select(context.Background(), pool, core.SearchParams{Limit: tt.limit, MinDeltaG: 0})
		assert.Equal(t, tt.want, ids(got), "limit %d", tt.limit)
	}
}

func TestSelect_DoesNotMutatePool(t *testing.T) {
	pool := []*core.Candidate{
		candidate("a", 0.1, "binding", ptr(-7), "x"),
		candidate("b", 0.9, "binding", ptr(-8), "y"),
		candidate("c", 0.5, "binding", nil),
	}
	order := append([]*core.Candidate(nil), pool...)
	snapshot := make([]core.Candidate, len(pool))
	for i, c := range pool {
		snapshot[i] = *c
	}

	e := newEngine(t)
	for _, d := range []float64{0.2, 0.9} {
		e.Select(context.Background(), pool, core.SearchParams{Query: "binding", Diversity: d, MinDeltaG: -5, Limit: 1})
	}

	assert.Equal(t, order, pool, "pool order unchanged")
	for i, c := range pool {
		assert.Equal(t, snapshot[i], *c)
	}
}

type failingRelevance struct{}

func (failingRelevance) Match(context.Context, string, []*core.Candidate) ([]*core.Match, error) {
	return nil, errors.New("index offline")
}

type recordingMonitor struct {
	noopMonitor
	fallbacks   int
	diversified bool
	finished    []*core.Candidate
}

func (m *recordingMonitor) RelevanceFallback(error) { m.fallbacks++ }

func (m *recordingMonitor) AfterOrdering(d bool, _ []*core.Match) { m.diversified = d }

func (m *recordingMonitor) Finish(results []*core.Candidate) { m.finished = results }

func TestSelect_RelevanceFallback(t *testing.T) {
	pool := []*core.Candidate{
		candidate("a", 0.4, "binding", nil),
		candidate("b", 0.6, "other", nil),
	}
	monitor := &recordingMonitor{}
	e := newEngine(t, WithRelevance(failingRelevance{}), WithMonitor(monitor), WithLogger(slog.Default()))

	got := e.Select(context.Background(), pool, core.SearchParams{Query: "binding", Diversity: 0.8, MinDeltaG: 0})
	assert.Equal(t, []string{"a"}, ids(got))
	assert.Equal(t, 1, monitor.fallbacks)
	assert.True(t, monitor.diversified)
	assert.Equal(t, got, monitor.finished)
}

func TestEmbeddingRelevance(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()
	ctx := context.Background()

	near := candidate("near", 0.1, "chunk", nil)
	near.Vector = []float32{1, 0}
	far := candidate("far", 0.9, "chunk", nil)
	far.Vector = []float32{0, 1}
	outside := candidate("outside", 0.5, "chunk", nil)
	outside.Vector = []float32{1, 0}
	_, err = repo.AddCandidates(ctx, near, far, outside)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return []float32{1, 0.1}, nil
	}

	t.Run("constructor validation", func(t *testing.T) {
		_, err := NewEmbeddingRelevance(nil, repo, 0)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
		_, err = NewEmbeddingRelevance(embedder, nil, 0)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})

	rel, err := NewEmbeddingRelevance(embedder, repo, 0.5)
	require.NoError(t, err)
	pool := []*core.Candidate{far, near}

	t.Run("keeps only similar pool members", func(t *testing.T) {
		matches, err := rel.Match(ctx, "protease", pool)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "near", matches[0].Candidate.ID)
		assert.Same(t, near, matches[0].Candidate)
		assert.Greater(t, matches[0].Score, float32(0.9))
	})

	t.Run("empty query keeps pool", func(t *testing.T) {
		matches, err := rel.Match(ctx, "", pool)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("engine falls back on embedder failure", func(t *testing.T) {
		broken := mock.NewMockEmbedder()
		broken.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedder down")
		}
		brokenRel, err := NewEmbeddingRelevance(broken, repo, 0)
		require.NoError(t, err)

		e := newEngine(t, WithRelevance(brokenRel))
		got := e.Select(ctx, pool, core.SearchParams{Query: "chunk", MinDeltaG: 0})
		assert.Equal(t, []string{"far", "near"}, ids(got))
	})
}

func TestParseMissingStabilityPolicy(t *testing.T) {
	for _, p := range []MissingStabilityPolicy{TreatMissingAsZero, IncludeMissing, ExcludeMissing} {
		got, err := ParseMissingStabilityPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParseMissingStabilityPolicy("sometimes")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestFeatureSimilarity(t *testing.T) {
	sim := FeatureSimilarity{}

	a := candidate("a", 0, "x", nil, "kinase inhibitor")
	b := candidate("b", 0, "x", nil, "kinase")
	assert.InDelta(t, 2.0/3.0, sim.Similarity(a, b), 1e-9)

	a.Vector = []float32{1, 0}
	b.Vector = []float32{1, 0}
	assert.InDelta(t, 1.0, sim.Similarity(a, b), 1e-6)

	empty := &core.Candidate{}
	assert.Zero(t, sim.Similarity(empty, empty))
}
