package engine

import (
	"fmt"
	"sync"
	"testing"
)

func TestStats_RecordConcurrent(t *testing.T) {
	s := NewStats(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				s.Record(Outcome{Status: StatusFailed, Err: fmt.Sprintf("err %d", i)})
			} else {
				s.Record(Outcome{Status: StatusSuccess})
			}
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Successful != 75 || snap.Failed != 25 {
		t.Errorf("expected 75/25, got %d/%d", snap.Successful, snap.Failed)
	}
	if snap.Successful+snap.Failed != snap.Total {
		t.Errorf("counters do not add up to total")
	}
	if len(snap.Errors) != maxErrorSamples {
		t.Errorf("expected %d sampled errors, got %d", maxErrorSamples, len(snap.Errors))
	}
}

func TestStats_SnapshotIsCopy(t *testing.T) {
	s := NewStats(2)
	s.Record(Outcome{Status: StatusFailed, Err: "boom"})

	snap := s.Snapshot()
	snap.Errors[0] = "mutated"

	if got := s.Snapshot().Errors[0]; got != "boom" {
		t.Errorf("snapshot mutation leaked into stats: %q", got)
	}
}
