package progress

import (
	"sync"
	"testing"
	"time"
)

func TestTrackerCounters(t *testing.T) {
	tr := NewTracker(nil)
	tr.Reset()
	tr.SetTotal(6)
	tr.ReportTransferred("a")
	tr.ReportTransferred("b")
	tr.ReportTransferred("c")
	tr.ReportSkipped("d")
	tr.ReportSkipped("e")
	tr.ReportError("f")

	snap := tr.Snapshot()
	if snap.Completed != 6 || snap.Transferred != 3 || snap.Skipped != 2 || snap.Errors != 1 {
		t.Errorf("got %+v, want 6 completed, 3 transferred, 2 skipped, 1 error", snap)
	}
	if !snap.HasTotal || snap.Total != 6 {
		t.Errorf("got total %d (has=%v), want 6", snap.Total, snap.HasTotal)
	}
	if snap.CurrentItem != "f" {
		t.Errorf("current item %q, want f", snap.CurrentItem)
	}
}

func TestTrackerThrottlesEmission(t *testing.T) {
	var mu sync.Mutex
	var emitted []Snapshot
	tr := NewTracker(func(s Snapshot) {
		mu.Lock()
		emitted = append(emitted, s)
		mu.Unlock()
	})
	tr.Reset()

	// A burst far faster than the emission interval.
	for i := 0; i < 50; i++ {
		tr.ReportTransferred("item")
	}

	mu.Lock()
	n := len(emitted)
	mu.Unlock()
	if n != 1 {
		t.Errorf("got %d emissions for a fast burst, want 1", n)
	}

	tr.Finish()
	mu.Lock()
	last := emitted[len(emitted)-1]
	mu.Unlock()
	if last.Completed != 50 {
		t.Errorf("final snapshot completed = %d, want 50", last.Completed)
	}
}

func TestTrackerEmitsAfterInterval(t *testing.T) {
	var mu sync.Mutex
	count := 0
	tr := NewTracker(func(Snapshot) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	tr.Reset()

	tr.ReportTransferred("a")
	time.Sleep(emitInterval + 20*time.Millisecond)
	tr.ReportTransferred("b")

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("got %d emissions, want 2", count)
	}
}

func TestTrackerScanningPhase(t *testing.T) {
	var snaps []Snapshot
	tr := NewTracker(func(s Snapshot) { snaps = append(snaps, s) })
	tr.Reset()
	tr.Scanning()

	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if snaps[0].Phase != PhaseScanning {
		t.Errorf("phase = %q, want scanning", snaps[0].Phase)
	}
	if snaps[0].HasTotal {
		t.Error("scanning snapshot should have no total")
	}

	snap := tr.Snapshot()
	if snap.Phase != PhaseSyncing {
		t.Errorf("phase after scan = %q, want syncing", snap.Phase)
	}
}

func TestTrackerResetClears(t *testing.T) {
	tr := NewTracker(nil)
	tr.Reset()
	tr.SetTotal(3)
	tr.ReportTransferred("a")
	tr.ReportError("b")

	tr.Reset()
	snap := tr.Snapshot()
	if snap.Completed != 0 || snap.Transferred != 0 || snap.Errors != 0 || snap.HasTotal {
		t.Errorf("after reset got %+v, want zeroed counters", snap)
	}
}

func TestTrackerThroughputAndETA(t *testing.T) {
	tr := NewTracker(nil)
	tr.Reset()
	tr.SetTotal(4)
	tr.ReportTransferred("a")
	tr.ReportTransferred("b")

	snap := tr.Snapshot()
	if snap.Throughput == "" {
		t.Error("expected a throughput estimate after completed items")
	}
	if snap.ETA == "" {
		t.Error("expected an ETA once total is known and items remain")
	}
}
