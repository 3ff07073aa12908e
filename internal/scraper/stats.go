package scraper

import "sync/atomic"

// Outcome classifies the terminal state of one tile job. Every job resolves
// to exactly one outcome.
type Outcome int

const (
	// OutcomeSuccess means the tile was fetched and written to the store.
	OutcomeSuccess Outcome = iota
	// OutcomeSkipped means the tile was already present; no fetch happened.
	OutcomeSkipped
	// OutcomeNotFound means the upstream returned 404, a permanent
	// negative that is never retried.
	OutcomeNotFound
	// OutcomeFailed means transient errors exhausted the retry budget.
	OutcomeFailed

	numOutcomes
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats aggregates job outcomes across workers. The zero value is ready to
// use and all methods are safe for concurrent use.
type Stats struct {
	counts [numOutcomes]atomic.Int64
}

// Record increments the counter for o.
func (s *Stats) Record(o Outcome) {
	s.counts[o].Add(1)
}

// Get returns the current count for o.
func (s *Stats) Get(o Outcome) int64 {
	return s.counts[o].Load()
}

// Total returns the number of outcomes recorded so far.
func (s *Stats) Total() int64 {
	var total int64
	for i := range s.counts {
		total += s.counts[i].Load()
	}
	return total
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Success  int64
	Skipped  int64
	NotFound int64
	Failed   int64
}

// Snapshot returns a copy of the current counts.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Success:  s.counts[OutcomeSuccess].Load(),
		Skipped:  s.counts[OutcomeSkipped].Load(),
		NotFound: s.counts[OutcomeNotFound].Load(),
		Failed:   s.counts[OutcomeFailed].Load(),
	}
}

// Total returns the sum of all counters in the snapshot.
func (sn Snapshot) Total() int64 {
	return sn.Success + sn.Skipped + sn.NotFound + sn.Failed
}
