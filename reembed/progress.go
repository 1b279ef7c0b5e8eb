package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// BuildStats summarizes a finished store build.
type BuildStats struct {
	Templates int
	Batches   int
	Retries   int
	Elapsed   time.Duration
}

// ProgressTracker reports templates embedded so far during a store build.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu sync.Mutex

	out      io.Writer
	total    int
	interval int

	done         int
	batches      int
	retries      int
	lastReported int
	startTime    time.Time
	running      bool
}

// NewProgressTracker creates a tracker for total templates that writes a
// status line to out every interval templates. A nil out disables output.
func NewProgressTracker(out io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{
		out:      out,
		total:    total,
		interval: max(1, interval),
	}
}

// Start resets the counters and starts the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.running = true
	p.done, p.batches, p.retries, p.lastReported = 0, 0, 0, 0
}

// BatchDone records a batch of size templates that needed attempts embedding
// calls.
func (p *ProgressTracker) BatchDone(size, attempts int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done = min(p.total, p.done+size)
	p.batches++
	if attempts > 1 {
		p.retries += attempts - 1
	}

	if p.done-p.lastReported >= p.interval {
		p.writeStatus()
		p.lastReported = p.done
	}
}

// Finish writes the final status line and returns the build summary.
// Templates reports what was actually recorded, not the expected total.
func (p *ProgressTracker) Finish() BuildStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return BuildStats{}
	}
	p.running = false

	if p.out != nil {
		p.writeStatus()
		fmt.Fprintln(p.out)
	}
	return BuildStats{
		Templates: p.done,
		Batches:   p.batches,
		Retries:   p.retries,
		Elapsed:   time.Since(p.startTime),
	}
}

// Done returns the number of templates embedded so far.
func (p *ProgressTracker) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// writeStatus must be called with mu held.
func (p *ProgressTracker) writeStatus() {
	if p.out == nil {
		return
	}

	percent := 100.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total) * 100
	}
	rate := 0.0
	if secs := time.Since(p.startTime).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}

	fmt.Fprintf(p.out, "\rEmbedding templates: %d/%d (%.1f%%) in %d batches, %d retries, %.1f templates/s",
		p.done, p.total, percent, p.batches, p.retries, rate)
}
