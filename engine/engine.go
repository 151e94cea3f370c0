package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/franksops/pixport/provider"
)

// ErrNoWorkers is returned when a batch is started with a non-positive
// worker count.
var ErrNoWorkers = errors.New("worker count must be at least 1")

// DefaultWorkers is the upload concurrency used when the caller does not
// choose one.
const DefaultWorkers = 10

// Engine drives a fixed-size pool of workers that push enumerated items to
// the remote object store and collates per-item outcomes.
type Engine struct {
	source   provider.Source
	uploader provider.Uploader
}

// New creates an Engine transferring from source to uploader.
func New(source provider.Source, uploader provider.Uploader) *Engine {
	return &Engine{source: source, uploader: uploader}
}

// TransferAll uploads every item to folder using a pool of workers
// goroutines and returns one outcome per item, in completion order.
//
// A per-item failure never aborts the batch; it is captured in the item's
// outcome and counted in the returned snapshot. The call blocks until every
// submitted item has produced its outcome.
func (e *Engine) TransferAll(ctx context.Context, items []provider.Item, folder string, workers int) ([]Outcome, Snapshot, error) {
	if workers < 1 {
		return nil, Snapshot{}, fmt.Errorf("%w: got %d", ErrNoWorkers, workers)
	}
	if len(items) == 0 {
		return []Outcome{}, Snapshot{}, nil
	}

	stats := NewStats(len(items))
	jobs := make(chan provider.Item)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- e.transferOne(ctx, item, folder)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			jobs <- item
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, 0, len(items))
	for out := range results {
		stats.Record(out)
		outcomes = append(outcomes, out)

		if len(outcomes)%10 == 0 {
			snap := stats.Snapshot()
			slog.Info("transfer progress",
				"completed", len(outcomes),
				"total", snap.Total,
				"successful", snap.Successful,
				"failed", snap.Failed)
		}
	}

	snap := stats.Snapshot()
	slog.Info("transfer complete",
		"total", snap.Total,
		"successful", snap.Successful,
		"failed", snap.Failed)
	return outcomes, snap, nil
}

// transferOne performs a single upload. Any failure, including a panic out
// of the SDK, is converted into a failed outcome at this boundary so nothing
// crosses into the pool silently.
func (e *Engine) transferOne(ctx context.Context, item provider.Item, folder string) (out Outcome) {
	name := item.Stem()

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Name: name, URL: FailedURL, Status: StatusFailed, Err: fmt.Sprintf("panic: %v", r)}
		}
	}()

	src, err := e.source.UploadSource(ctx, item)
	if err != nil {
		return Outcome{Name: name, URL: FailedURL, Status: StatusFailed, Err: err.Error()}
	}

	url, err := e.uploader.Upload(ctx, src, folder, name)
	if err != nil {
		return Outcome{Name: name, URL: FailedURL, Status: StatusFailed, Err: err.Error()}
	}

	return Outcome{Name: name, URL: url, Status: StatusSuccess}
}
