package ranking

import "github.com/poiesic/bioorbit/core"

// Similarity scores how alike two candidates are, in [-1, 1]. It drives
// the redundancy penalty of diversified ordering.
type Similarity interface {
	Similarity(a, b *core.Candidate) float64
}

// FeatureSimilarity compares chunk embeddings by cosine when both
// candidates carry one. Otherwise it falls back to the Jaccard index of
// their tag words and molecule type.
type FeatureSimilarity struct{}

var _ Similarity = FeatureSimilarity{}

func (FeatureSimilarity) Similarity(a, b *core.Candidate) float64 {
	if len(a.Vector) > 0 && len(b.Vector) > 0 {
		return float64(core.CosineSimilarity(a.Vector, b.Vector))
	}
	return jaccard(features(a), features(b))
}

func features(c *core.Candidate) map[string]struct{} {
	set := make(map[string]struct{}, len(c.Tags)+1)
	if c.Type != "" {
		set["type:"+string(c.Type)] = struct{}{}
	}
	for _, tag := range c.Tags {
		for _, word := range tokenizeAndFilter(tag) {
			set[word] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
