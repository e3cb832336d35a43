package ranking

import "github.com/poiesic/bioorbit/core"

// SelectMonitor provides hooks to observe a Select call.
// Implement this interface to track intermediate steps and results.
type SelectMonitor interface {
	Start(params core.SearchParams, poolSize int)
	AfterRelevance(matches []*core.Match)
	RelevanceFallback(err error)
	AfterStability(matches []*core.Match)
	AfterOrdering(diversified bool, matches []*core.Match)
	Finish(results []*core.Candidate)
}

// noopMonitor is a no-op implementation of SelectMonitor
type noopMonitor struct{}

var _ SelectMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.SearchParams, _ int)      {}
func (n *noopMonitor) AfterRelevance(_ []*core.Match)        {}
func (n *noopMonitor) RelevanceFallback(_ error)             {}
func (n *noopMonitor) AfterStability(_ []*core.Match)        {}
func (n *noopMonitor) AfterOrdering(_ bool, _ []*core.Match) {}
func (n *noopMonitor) Finish(_ []*core.Candidate)            {}
