package ranking

import (
	"context"

	"github.com/poiesic/bioorbit/ai"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage"
)

// Relevance decides which pool candidates match a query and how strongly.
// Implementations must not modify the pool or its candidates, and must
// return matches in pool order.
type Relevance interface {
	Match(ctx context.Context, query string, pool []*core.Candidate) ([]*core.Match, error)
}

// KeywordRelevance keeps a candidate when any whitespace token of the query
// occurs, case-insensitively, in the candidate's chunk text or source
// title. The match score is the candidate's own index score.
type KeywordRelevance struct{}

var _ Relevance = KeywordRelevance{}

func (KeywordRelevance) Match(_ context.Context, query string, pool []*core.Candidate) ([]*core.Match, error) {
	tokens := queryTokens(query)
	matches := make([]*core.Match, 0, len(pool))
	for _, c := range pool {
		if c == nil {
			continue
		}
		if containsAnyToken(c.RelevanceText(), tokens) {
			matches = append(matches, &core.Match{Candidate: c, Score: c.Score})
		}
	}
	return matches, nil
}

// defaultMinSimilarity is the cosine cutoff for EmbeddingRelevance.
const defaultMinSimilarity = 0.35

// EmbeddingRelevance embeds the query and keeps the pool candidates whose
// stored chunk vector has a cosine similarity of at least the cutoff. The
// match score is that similarity. An empty query keeps the whole pool, scored as
// KeywordRelevance would.
type EmbeddingRelevance struct {
	embedder      ai.Embedder
	repo          storage.Repository
	minSimilarity float32
}

var _ Relevance = (*EmbeddingRelevance)(nil)

// NewEmbeddingRelevance creates an EmbeddingRelevance. A non-positive
// minSimilarity selects the default cutoff.
func NewEmbeddingRelevance(embedder ai.Embedder, repo storage.Repository, minSimilarity float32) (*EmbeddingRelevance, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}
	return &EmbeddingRelevance{
		embedder:      embedder,
		repo:          repo,
		minSimilarity: minSimilarity,
	}, nil
}

func (r *EmbeddingRelevance) Match(ctx context.Context, query string, pool []*core.Candidate) ([]*core.Match, error) {
	if len(queryTokens(query)) == 0 {
		return KeywordRelevance{}.Match(ctx, query, pool)
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.repo.FindSimilar(ctx, vector, r.minSimilarity, 0)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float32, len(hits))
	for _, hit := range hits {
		scores[hit.Candidate.ID] = hit.Score
	}

	// Only candidates in the caller's pool may be returned.
	matches := make([]*core.Match, 0, len(hits))
	for _, c := range pool {
		if c == nil {
			continue
		}
		if score, ok := scores[c.ID]; ok {
			matches = append(matches, &core.Match{Candidate: c, Score: score})
		}
	}
	return matches, nil
}
