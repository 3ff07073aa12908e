// Package scraper implements the concurrent tile fetch-store pipeline: a
// bounded worker pool draining a tile plan, per-job existence checks and
// retry logic, thread-safe outcome aggregation, and pre-flight estimation.
package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Zersya/s3-tile-scrapper/internal/source"
	"github.com/Zersya/s3-tile-scrapper/internal/store"
	"github.com/Zersya/s3-tile-scrapper/pkg/tile"
)

// Options configures a Scraper.
type Options struct {
	// Workers is the size of the worker pool.
	// Default: 20
	Workers int

	// Attempts is the per-tile fetch budget. A 404 consumes the job
	// immediately regardless of this value.
	// Default: 3
	Attempts int

	// Delay is the fixed pause between attempts. No backoff, no jitter.
	// Default: 1s
	Delay time.Duration

	// ContentType is stored with every tile.
	// Default: image/png
	ContentType string

	// OnOutcome, when non-nil, is invoked once per completed job.
	// Callbacks run on worker goroutines and may be concurrent.
	OnOutcome func(tile.Coord, Outcome)

	// Logger receives warnings and per-tile failure entries.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Scraper mirrors planned tiles from the upstream source into the store.
type Scraper struct {
	source  *source.Client
	store   *store.Store
	pattern string
	opts    Options

	// sleep is the inter-attempt pause, swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Scraper fetching from the {z}/{x}/{y} urlPattern and writing
// into st.
func New(src *source.Client, st *store.Store, urlPattern string, opts Options) *Scraper {
	if opts.Workers <= 0 {
		opts.Workers = 20
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.ContentType == "" {
		opts.ContentType = "image/png"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Scraper{
		source:  src,
		store:   st,
		pattern: urlPattern,
		opts:    opts,
		sleep:   sleepContext,
	}
}

// job is one unit of work: a coordinate with its resolved source URL and
// destination key. Jobs are created by the feeder and discarded after one
// pass; retries happen inside a single job.
type job struct {
	coord tile.Coord
	url   string
	key   string
}

// Run drains the plan through the worker pool and blocks until every
// submitted job has produced an outcome. Tile ordering between jobs is not
// guaranteed, and one job's failure never affects another.
//
// Cancelling ctx stops submission of new jobs; jobs already submitted finish
// or time out. The returned snapshot is valid either way: its total always
// equals the number of jobs submitted. A cancelled run returns ctx.Err().
func (s *Scraper) Run(ctx context.Context, plan *tile.Plan) (Snapshot, error) {
	stats := &Stats{}
	jobs := make(chan job, s.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcome := s.process(ctx, j)
				stats.Record(outcome)
				if s.opts.OnOutcome != nil {
					s.opts.OnOutcome(j.coord, outcome)
				}
			}
		}()
	}

	plan.Tiles(func(c tile.Coord) bool {
		j := job{
			coord: c,
			url:   source.URLFor(s.pattern, c),
			key:   s.store.Key(c),
		}
		select {
		case jobs <- j:
			return true
		case <-ctx.Done():
			return false
		}
	})
	close(jobs)

	wg.Wait()
	return stats.Snapshot(), ctx.Err()
}

// sleepContext pauses for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
