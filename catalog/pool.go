package catalog

import "github.com/poiesic/bioorbit/core"

// Pool is a read-only snapshot of the candidates available for search.
// It is safe for concurrent use because nothing writes to it after NewPool.
type Pool struct {
	candidates []*core.Candidate
	byID       map[string]*core.Candidate
}

// NewPool snapshots candidates. Later changes to the caller's slice are
// not visible through the pool.
func NewPool(candidates []*core.Candidate) *Pool {
	p := &Pool{
		candidates: make([]*core.Candidate, len(candidates)),
		byID:       make(map[string]*core.Candidate, len(candidates)),
	}
	copy(p.candidates, candidates)
	for _, c := range p.candidates {
		p.byID[c.ID] = c
	}
	return p
}

// Candidates returns the pool in catalog order. The returned slice is a
// copy; the candidates themselves must be treated as immutable.
func (p *Pool) Candidates() []*core.Candidate {
	out := make([]*core.Candidate, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// Get looks up a candidate by ID.
func (p *Pool) Get(id string) (*core.Candidate, bool) {
	c, ok := p.byID[id]
	return c, ok
}

func (p *Pool) Len() int {
	return len(p.candidates)
}
