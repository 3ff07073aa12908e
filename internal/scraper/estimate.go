package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/Zersya/s3-tile-scrapper/internal/source"
	"github.com/Zersya/s3-tile-scrapper/pkg/tile"
)

// ErrBenchmarkUnavailable is returned when no benchmark sample completed.
// The estimate is advisory; callers should report it as unavailable and
// carry on.
var ErrBenchmarkUnavailable = errors.New("scraper: no benchmark sample succeeded")

// EstimateSize projects the total byte size of a plan from an assumed
// average tile size.
func EstimateSize(totalTiles, avgTileSize int64) int64 {
	return totalTiles * avgTileSize
}

// EstimateDuration projects the wall-clock time to mirror totalTiles given
// the measured average per-tile round trip, the worker budget, and an
// overhead factor covering scheduling and existence-check latency not
// present in the raw samples.
func EstimateDuration(totalTiles int64, perTile time.Duration, workers int, overhead float64) time.Duration {
	if workers <= 0 {
		workers = 1
	}
	if overhead <= 0 {
		overhead = 1
	}
	seconds := float64(totalTiles) * perTile.Seconds() / float64(workers) * overhead
	return time.Duration(seconds * float64(time.Second))
}

// SampleCoords picks up to n benchmark coordinates from the plan: the
// mid-point tile of up to three zoom levels spread across the range, plus
// immediate in-range neighbors. The selection is deterministic.
func SampleCoords(plan *tile.Plan, n int) []tile.Coord {
	if n <= 0 || len(plan.Levels) == 0 {
		return nil
	}

	// The middle level plus one on each side, a quarter of the range away.
	levels := plan.Levels
	if len(levels) > 3 {
		mid := len(levels) / 2
		step := len(levels) / 4
		levels = []tile.Level{levels[mid-step], levels[mid], levels[mid+step]}
	}

	var coords []tile.Coord
	for _, l := range levels {
		if len(coords) >= n {
			break
		}
		midX := (l.MinX + l.MaxX) / 2
		midY := (l.MinY + l.MaxY) / 2

		coords = append(coords, tile.Coord{Z: l.Zoom, X: midX, Y: midY})
		if len(coords) < n && midX+1 <= l.MaxX {
			coords = append(coords, tile.Coord{Z: l.Zoom, X: midX + 1, Y: midY})
		}
		if len(coords) < n && midY+1 <= l.MaxY {
			coords = append(coords, tile.Coord{Z: l.Zoom, X: midX, Y: midY + 1})
		}
	}

	return coords
}

// BenchmarkOptions configures a benchmark run.
type BenchmarkOptions struct {
	// Samples caps the number of sample tiles.
	// Default: 10
	Samples int

	// OnSample, when non-nil, is called after each successful sample with
	// its 1-based ordinal and elapsed time.
	OnSample func(i int, elapsed time.Duration)
}

// Benchmark measures the average fetch+store round trip over a few sample
// tiles from the plan. Samples perform real fetches and real writes. Failed
// samples are skipped; if none succeed, ErrBenchmarkUnavailable is returned.
func (s *Scraper) Benchmark(ctx context.Context, plan *tile.Plan, opts BenchmarkOptions) (time.Duration, error) {
	if opts.Samples <= 0 {
		opts.Samples = 10
	}

	var (
		total time.Duration
		ok    int
	)
	for _, c := range SampleCoords(plan, opts.Samples) {
		start := time.Now()

		data, err := s.source.Fetch(ctx, source.URLFor(s.pattern, c))
		if err != nil {
			s.opts.Logger.Warn("benchmark sample fetch failed",
				"tile", c.Path(), "error", err)
			continue
		}
		if err := s.store.Put(ctx, c, data, s.opts.ContentType); err != nil {
			s.opts.Logger.Warn("benchmark sample write failed",
				"tile", c.Path(), "error", err)
			continue
		}

		elapsed := time.Since(start)
		total += elapsed
		ok++
		if opts.OnSample != nil {
			opts.OnSample(ok, elapsed)
		}
	}

	if ok == 0 {
		return 0, ErrBenchmarkUnavailable
	}
	return total / time.Duration(ok), nil
}
