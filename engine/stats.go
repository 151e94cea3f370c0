package engine

import "sync"

// maxErrorSamples caps the number of failure descriptions retained for
// diagnostics.
const maxErrorSamples = 10

// Stats aggregates the running counters of one batch. Total is set once when
// the batch starts; everything else is mutated by workers through Record,
// always under the mutex. Successful+Failed never exceeds Total and equals
// it once the batch completes.
type Stats struct {
	mu         sync.Mutex
	total      int
	successful int
	failed     int
	errors     []string
}

// NewStats creates the aggregate for a batch of total items.
func NewStats(total int) *Stats {
	return &Stats{total: total}
}

// Record folds one outcome into the counters.
func (s *Stats) Record(out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if out.Status == StatusSuccess {
		s.successful++
		return
	}
	s.failed++
	if len(s.errors) < maxErrorSamples {
		s.errors = append(s.errors, out.Err)
	}
}

// Snapshot is a point-in-time copy of the counters, safe to hand to callers.
type Snapshot struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Snapshot returns a consistent copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make([]string, len(s.errors))
	copy(errs, s.errors)
	return Snapshot{
		Total:      s.total,
		Successful: s.successful,
		Failed:     s.failed,
		Errors:     errs,
	}
}
