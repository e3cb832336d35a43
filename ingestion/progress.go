package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progress writes a single updating status line while batches finish.
// A nil *progress is valid and reports nothing.
type progress struct {
	writer    io.Writer
	total     int
	done      int
	failed    int
	startTime time.Time
	mu        sync.Mutex
}

func newProgress(writer io.Writer, total int) *progress {
	if writer == nil {
		return nil
	}
	return &progress{
		writer:    writer,
		total:     total,
		startTime: time.Now(),
	}
}

// batchDone records one finished batch of size n.
func (p *progress) batchDone(n int, ok bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = min(p.done+n, p.total)
	if !ok {
		p.failed += n
	}
	p.report()
}

// finish prints the final line and a newline.
func (p *progress) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.writer)
}

// report must be called with the lock held.
func (p *progress) report() {
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}
	rate := float64(p.done) / max(time.Since(p.startTime).Seconds(), 1e-9)

	fmt.Fprintf(p.writer, "\rEmbedding: %d/%d (%.1f%%) - %d failed - %.1f candidates/s",
		p.done, p.total, percentage, p.failed, rate)
}
