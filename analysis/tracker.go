package analysis

import "sync"

// Ticket identifies one analysis request for a candidate.
type Ticket struct {
	CandidateID string
	generation  uint64
}

// Tracker hands out tickets per candidate. Only the most recently issued
// ticket for a candidate is current; issuing a new one or invalidating the
// candidate makes every earlier ticket stale.
type Tracker struct {
	mu          sync.Mutex
	generations map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{generations: make(map[string]uint64)}
}

// Begin issues a new current ticket for id.
func (t *Tracker) Begin(id string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generations[id]++
	return Ticket{CandidateID: id, generation: t.generations[id]}
}

// Current reports whether ticket is still the latest for its candidate.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generations[ticket.CandidateID] == ticket.generation
}

// Invalidate makes every outstanding ticket for id stale.
func (t *Tracker) Invalidate(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generations[id]++
}

// deliverIfCurrent runs fn while holding the tracker lock if ticket is
// current, so no newer ticket can be issued between the check and fn.
// fn must not call back into the Tracker.
func (t *Tracker) deliverIfCurrent(ticket Ticket, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generations[ticket.CandidateID] != ticket.generation {
		return false
	}
	fn()
	return true
}
