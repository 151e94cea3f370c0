package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/franksops/pixport/engine"
	"github.com/franksops/pixport/provider"
)

// fakeSource resolves items to their path unchanged.
type fakeSource struct {
	mu       sync.Mutex
	resolved int
}

func (f *fakeSource) Enumerate(ctx context.Context, path string) ([]provider.Item, error) {
	return nil, nil
}

func (f *fakeSource) UploadSource(ctx context.Context, item provider.Item) (string, error) {
	f.mu.Lock()
	f.resolved++
	f.mu.Unlock()
	return item.Path, nil
}

// fakeUploader succeeds unless the public ID is in failIDs.
type fakeUploader struct {
	failIDs map[string]bool
	panicID string

	mu    sync.Mutex
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, source, folder, publicID string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if publicID == f.panicID {
		panic("uploader blew up")
	}
	if f.failIDs[publicID] {
		return "", errors.New("simulated remote failure")
	}
	return fmt.Sprintf("https://res.example.com/%s/%s", folder, publicID), nil
}

func makeItems(n int) []provider.Item {
	items := make([]provider.Item, n)
	for i := range items {
		name := fmt.Sprintf("img-%03d.jpg", i)
		items[i] = provider.Item{Name: name, Origin: provider.OriginLocal, Path: "/src/" + name}
	}
	return items
}

func TestTransferAll_EveryItemYieldsOneOutcome(t *testing.T) {
	for _, workers := range []int{1, 3, 10} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			e := engine.New(&fakeSource{}, &fakeUploader{})
			items := makeItems(17)

			outcomes, snap, err := e.TransferAll(context.Background(), items, "dest", workers)
			if err != nil {
				t.Fatalf("TransferAll failed: %v", err)
			}
			if len(outcomes) != len(items) {
				t.Fatalf("expected %d outcomes, got %d", len(items), len(outcomes))
			}

			seen := make(map[string]bool)
			for _, out := range outcomes {
				if seen[out.Name] {
					t.Errorf("duplicate outcome for %q", out.Name)
				}
				seen[out.Name] = true
			}
			if snap.Successful+snap.Failed != snap.Total {
				t.Errorf("successful(%d)+failed(%d) != total(%d)", snap.Successful, snap.Failed, snap.Total)
			}
			if snap.Total != len(items) {
				t.Errorf("expected total %d, got %d", len(items), snap.Total)
			}
		})
	}
}

func TestTransferAll_PartialFailures(t *testing.T) {
	// 23 items with 10 workers; the remote store rejects 3 identifiers.
	up := &fakeUploader{failIDs: map[string]bool{
		"img-004": true,
		"img-011": true,
		"img-019": true,
	}}
	e := engine.New(&fakeSource{}, up)
	items := makeItems(23)

	outcomes, snap, err := e.TransferAll(context.Background(), items, "dest", 10)
	if err != nil {
		t.Fatalf("TransferAll failed: %v", err)
	}
	if len(outcomes) != 23 {
		t.Fatalf("expected 23 outcomes, got %d", len(outcomes))
	}
	if snap.Successful != 20 || snap.Failed != 3 {
		t.Errorf("expected 20/3, got %d/%d", snap.Successful, snap.Failed)
	}
	if len(snap.Errors) != 3 {
		t.Errorf("expected 3 error samples, got %d", len(snap.Errors))
	}

	for _, out := range outcomes {
		if up.failIDs[out.Name] {
			if out.Status != engine.StatusFailed || out.URL != engine.FailedURL || out.Err == "" {
				t.Errorf("bad failed outcome: %+v", out)
			}
		} else {
			if out.Status != engine.StatusSuccess || !strings.HasPrefix(out.URL, "https://") {
				t.Errorf("bad success outcome: %+v", out)
			}
		}
	}
}

func TestTransferAll_ErrorSamplesCapped(t *testing.T) {
	failAll := map[string]bool{}
	items := makeItems(25)
	for _, it := range items {
		failAll[it.Stem()] = true
	}

	e := engine.New(&fakeSource{}, &fakeUploader{failIDs: failAll})
	_, snap, err := e.TransferAll(context.Background(), items, "dest", 5)
	if err != nil {
		t.Fatalf("TransferAll failed: %v", err)
	}
	if snap.Failed != 25 {
		t.Errorf("expected 25 failed, got %d", snap.Failed)
	}
	if len(snap.Errors) != 10 {
		t.Errorf("expected error samples capped at 10, got %d", len(snap.Errors))
	}
}

func TestTransferAll_EmptyBatch(t *testing.T) {
	up := &fakeUploader{}
	e := engine.New(&fakeSource{}, up)

	outcomes, snap, err := e.TransferAll(context.Background(), nil, "dest", 4)
	if err != nil {
		t.Fatalf("TransferAll failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
	if snap.Total != 0 {
		t.Errorf("expected zero total, got %d", snap.Total)
	}
	if up.calls != 0 {
		t.Errorf("uploader must not be invoked for an empty batch, got %d calls", up.calls)
	}
}

func TestTransferAll_RejectsBadWorkerCount(t *testing.T) {
	e := engine.New(&fakeSource{}, &fakeUploader{})
	for _, workers := range []int{0, -1} {
		_, _, err := e.TransferAll(context.Background(), makeItems(2), "dest", workers)
		if !errors.Is(err, engine.ErrNoWorkers) {
			t.Errorf("workers=%d: expected ErrNoWorkers, got %v", workers, err)
		}
	}
}

func TestTransferAll_PanicBecomesFailedOutcome(t *testing.T) {
	e := engine.New(&fakeSource{}, &fakeUploader{panicID: "img-001"})
	items := makeItems(3)

	outcomes, snap, err := e.TransferAll(context.Background(), items, "dest", 2)
	if err != nil {
		t.Fatalf("TransferAll failed: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if snap.Successful != 2 || snap.Failed != 1 {
		t.Errorf("expected 2/1, got %d/%d", snap.Successful, snap.Failed)
	}
	for _, out := range outcomes {
		if out.Name == "img-001" && !strings.Contains(out.Err, "panic") {
			t.Errorf("expected panic description, got %q", out.Err)
		}
	}
}

// resolveErrSource fails resolution for one item to exercise the
// source-side failure path.
type resolveErrSource struct {
	fakeSource
	badPath string
}

func (r *resolveErrSource) UploadSource(ctx context.Context, item provider.Item) (string, error) {
	if item.Path == r.badPath {
		return "", errors.New("temporary link unavailable")
	}
	return r.fakeSource.UploadSource(ctx, item)
}

func TestTransferAll_SourceResolutionFailure(t *testing.T) {
	items := makeItems(4)
	e := engine.New(&resolveErrSource{badPath: items[2].Path}, &fakeUploader{})

	outcomes, snap, err := e.TransferAll(context.Background(), items, "dest", 2)
	if err != nil {
		t.Fatalf("TransferAll failed: %v", err)
	}
	if snap.Failed != 1 || snap.Successful != 3 {
		t.Errorf("expected 3/1, got %d/%d", snap.Successful, snap.Failed)
	}
	for _, out := range outcomes {
		if out.Name == items[2].Stem() && out.URL != engine.FailedURL {
			t.Errorf("expected sentinel URL for failed item, got %q", out.URL)
		}
	}
}
