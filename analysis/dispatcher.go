package analysis

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/bioorbit/core"
)

// DeliverFunc receives the report of a request that is still current.
// It must not call back into the Dispatcher.
type DeliverFunc func(ticket Ticket, report Report)

type inflight struct {
	ticket Ticket
	cancel context.CancelFunc
}

// Dispatcher runs analyses on a worker pool. A new request for a candidate
// cancels the previous one, and stale reports are dropped rather than
// delivered.
type Dispatcher struct {
	analyzer *Analyzer
	tracker  *Tracker
	pool     *ants.Pool
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]inflight
	released bool
	wg       sync.WaitGroup
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithPoolSize sets the number of concurrent analyses.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) DispatcherOption {
	return func(d *Dispatcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if d.pool != nil {
			d.pool.Release()
		}
		d.pool = pool
		return nil
	}
}

// WithDispatcherLogger sets a custom logger.
// Default is slog.Default().
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDispatcher creates a Dispatcher around analyzer.
func NewDispatcher(analyzer *Analyzer, opts ...DispatcherOption) (*Dispatcher, error) {
	if analyzer == nil {
		return nil, ErrAnalyzerRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		analyzer: analyzer,
		tracker:  NewTracker(),
		pool:     pool,
		logger:   slog.Default(),
		inflight: make(map[string]inflight),
	}
	for _, opt := range opts {
		if optErr := opt(d); optErr != nil {
			d.pool.Release()
			return nil, optErr
		}
	}
	d.logger = d.logger.With("component", "dispatcher")
	return d, nil
}

// Submit starts an analysis of c in the background and returns its ticket.
// Any earlier request for the same candidate is cancelled and its report
// will not be delivered. deliver runs on a worker goroutine.
func (d *Dispatcher) Submit(ctx context.Context, c *core.Candidate, credential string, deliver DeliverFunc) (Ticket, error) {
	if c == nil {
		return Ticket{}, ErrNilCandidate
	}

	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return Ticket{}, ErrDispatcherClosed
	}
	ticket := d.tracker.Begin(c.ID)
	if prev, ok := d.inflight[c.ID]; ok {
		prev.cancel()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	d.inflight[c.ID] = inflight{ticket: ticket, cancel: cancel}
	d.wg.Add(1)
	d.mu.Unlock()

	err := d.pool.Submit(func() {
		defer d.wg.Done()
		defer d.finish(ticket)

		report := d.analyzer.AnalyzeWithOutcome(taskCtx, c, credential)
		delivered := d.tracker.deliverIfCurrent(ticket, func() {
			if deliver != nil {
				deliver(ticket, report)
			}
		})
		if !delivered {
			d.logger.Debug("dropping stale analysis", "candidate", c.ID, "outcome", report.Outcome)
		}
	})
	if err != nil {
		d.wg.Done()
		d.finish(ticket)
		return Ticket{}, err
	}
	return ticket, nil
}

// finish releases the in-flight entry for ticket if it is still the
// registered one.
func (d *Dispatcher) finish(ticket Ticket) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.inflight[ticket.CandidateID]; ok && cur.ticket == ticket {
		cur.cancel()
		delete(d.inflight, ticket.CandidateID)
	}
}

// Current reports whether ticket is the latest request for its candidate.
func (d *Dispatcher) Current(ticket Ticket) bool {
	return d.tracker.Current(ticket)
}

// Cancel abandons any outstanding request for candidateID. Its report
// will not be delivered.
func (d *Dispatcher) Cancel(candidateID string) {
	d.tracker.Invalidate(candidateID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.inflight[candidateID]; ok {
		cur.cancel()
		delete(d.inflight, candidateID)
	}
}

// Wait blocks until every submitted analysis has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Release cancels outstanding work, waits for the workers and tears down
// the pool. The dispatcher cannot be used afterwards.
func (d *Dispatcher) Release() {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return
	}
	d.released = true
	for id, cur := range d.inflight {
		d.tracker.Invalidate(id)
		cur.cancel()
		delete(d.inflight, id)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.pool.Release()
}
