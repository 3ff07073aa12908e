package scraper

import (
	"context"
	"errors"

	"github.com/Zersya/s3-tile-scrapper/internal/source"
)

// process runs the per-tile state machine: existence check, then up to
// Attempts fetch+store tries with a fixed delay between them. Exactly one
// outcome is returned.
func (s *Scraper) process(ctx context.Context, j job) Outcome {
	exists, err := s.store.Exists(ctx, j.coord)
	if err != nil {
		// An ambiguous store error is treated as "assume absent" and
		// the tile is refetched. Under a sustained store outage this
		// can duplicate a write that already happened.
		s.opts.Logger.Warn("existence check failed, assuming absent",
			"tile", j.coord.Path(), "key", j.key, "error", err)
	} else if exists {
		return OutcomeSkipped
	}

	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		data, err := s.source.Fetch(ctx, j.url)
		switch {
		case err == nil:
			if putErr := s.store.Put(ctx, j.coord, data, s.opts.ContentType); putErr != nil {
				s.opts.Logger.Warn("store write failed",
					"tile", j.coord.Path(), "attempt", attempt, "error", putErr)
				break
			}
			return OutcomeSuccess

		case errors.Is(err, source.ErrNotFound):
			// Permanent negative: never retried.
			s.opts.Logger.Info("tile not found upstream", "tile", j.coord.Path())
			return OutcomeNotFound

		case errors.Is(err, source.ErrEmptyBody):
			s.opts.Logger.Warn("empty tile body",
				"tile", j.coord.Path(), "attempt", attempt)

		default:
			s.opts.Logger.Warn("fetch failed",
				"tile", j.coord.Path(), "attempt", attempt, "error", err)
		}

		if attempt < s.opts.Attempts {
			if err := s.sleep(ctx, s.opts.Delay); err != nil {
				break
			}
		}
	}

	s.opts.Logger.Error("tile failed after retries",
		"tile", j.coord.Path(), "attempts", s.opts.Attempts)
	return OutcomeFailed
}
