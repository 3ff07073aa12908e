// Package progress renders console progress for a scrape run.
//
// The reporter subscribes to the scheduler's outcome callback and prints a
// periodically refreshed status line; it never touches the failure log,
// which stays line-oriented and append-only.
package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures the progress reporter.
type Options struct {
	// TotalTiles is the number of tiles in the plan.
	TotalTiles int64

	// Workers is the worker pool size (for the header line).
	Workers int

	// SourceURL is the tile URL pattern being mirrored (for display).
	SourceURL string

	// Output is where progress lines are written.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is how often the status line refreshes.
	// Default: 1s
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress for a running scrape. It is safe
// for concurrent use by the worker pool.
type Reporter struct {
	opts Options

	done atomic.Int64

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
	lastDone   int64
	stopCh     chan struct{}
	stopped    bool
}

// NewReporter creates a progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = time.Second
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start prints the header and begins the periodic status updates.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.lastUpdate = r.startTime

	fmt.Fprintf(r.opts.Output, "[tilescraper] Mirroring %s tiles from %s | Workers: %d\n",
		humanize.Comma(r.opts.TotalTiles),
		r.opts.SourceURL,
		r.opts.Workers,
	)

	go r.updateLoop()
}

// Stop stops the reporter. Safe to call more than once.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// TileDone records one completed tile job, whatever its outcome.
func (r *Reporter) TileDone() {
	r.done.Add(1)
}

// Done returns the number of tiles recorded so far.
func (r *Reporter) Done() int64 {
	return r.done.Load()
}

func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	now := time.Now()
	done := r.done.Load()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	rate := float64(done-r.lastDone) / elapsed
	r.lastUpdate = now
	r.lastDone = done

	var percent float64
	eta := "calculating..."
	if r.opts.TotalTiles > 0 {
		percent = float64(done) / float64(r.opts.TotalTiles) * 100
		if rate > 0 {
			remaining := float64(r.opts.TotalTiles-done) / rate
			eta = FormatDuration(time.Duration(remaining * float64(time.Second)))
		}
	}

	fmt.Fprintf(r.opts.Output, "\r[tilescraper] %s / %s tiles (%.1f%%) | %.1f tiles/s | ETA: %s    ",
		humanize.Comma(done),
		humanize.Comma(r.opts.TotalTiles),
		percent,
		rate,
		eta,
	)
}

func (r *Reporter) printFinalStatus() {
	done := r.done.Load()
	duration := time.Since(r.startTime)
	rate := float64(done) / math.Max(duration.Seconds(), 0.001)

	fmt.Fprintf(r.opts.Output, "\r[tilescraper] %s tiles in %s (%.1f tiles/s)    \n",
		humanize.Comma(done),
		FormatDuration(duration),
		rate,
	)
}

// FormatDuration renders a duration for the summary output: seconds,
// minutes, hours, or days with leftover hours.
func FormatDuration(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 60:
		return fmt.Sprintf("%.0f seconds", s)
	case s < 3600:
		return fmt.Sprintf("%.1f minutes", s/60)
	case s < 86400:
		return fmt.Sprintf("%.1f hours", s/3600)
	default:
		days := math.Floor(s / 86400)
		hours := math.Floor(math.Mod(s, 86400) / 3600)
		return fmt.Sprintf("%.0f days %.0f hours", days, hours)
	}
}
