package progress

import (
	"fmt"
	"sync"
	"time"
)

// Phase identifies which stage of a sync run a snapshot belongs to.
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseSyncing  Phase = "syncing"
)

// emitInterval is the minimum spacing between consecutive snapshot
// emissions. Reports arriving faster than this update counters silently.
const emitInterval = 100 * time.Millisecond

// Snapshot is a point-in-time view of a sync run's counters.
type Snapshot struct {
	Phase       Phase
	Total       int64
	HasTotal    bool
	Completed   int64
	Transferred int64
	Skipped     int64
	Errors      int64
	CurrentItem string
	Throughput  string
	ETA         string
}

// Sink receives throttled snapshots. It is called from transfer worker
// goroutines and must be fast; heavy rendering belongs on the consumer side.
type Sink func(Snapshot)

// Tracker aggregates per-item completion reports from concurrent workers
// into throttled snapshots. All state lives behind one mutex; workers only
// ever touch the tracker, never each other.
type Tracker struct {
	mu          sync.Mutex
	sink        Sink
	phase       Phase
	total       int64
	hasTotal    bool
	completed   int64
	transferred int64
	skipped     int64
	errors      int64
	currentItem string
	start       time.Time
	lastEmit    time.Time
}

// NewTracker creates a tracker delivering snapshots to sink. A nil sink
// disables emission; counters still accumulate.
func NewTracker(sink Sink) *Tracker {
	return &Tracker{sink: sink, phase: PhaseSyncing}
}

// Reset clears all counters for a new run. The first report after a reset
// always emits.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseSyncing
	t.total = 0
	t.hasTotal = false
	t.completed = 0
	t.transferred = 0
	t.skipped = 0
	t.errors = 0
	t.currentItem = ""
	t.start = time.Now()
	t.lastEmit = time.Time{}
}

// Scanning emits a single scanning-phase snapshot with an unknown total.
func (t *Tracker) Scanning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseScanning
	t.emitLocked(time.Now())
	t.phase = PhaseSyncing
}

// SetTotal records the expected item count, enabling ETA estimation.
func (t *Tracker) SetTotal(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = n
	t.hasTotal = true
}

// ReportTransferred records one completed transfer.
func (t *Tracker) ReportTransferred(name string) {
	t.report(name, &t.transferred)
}

// ReportSkipped records one item that needed no transfer.
func (t *Tracker) ReportSkipped(name string) {
	t.report(name, &t.skipped)
}

// ReportError records one failed item.
func (t *Tracker) ReportError(name string) {
	t.report(name, &t.errors)
}

func (t *Tracker) report(name string, counter *int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	*counter++
	t.currentItem = name
	now := time.Now()
	if now.Sub(t.lastEmit) >= emitInterval {
		t.emitLocked(now)
	}
}

// Finish emits a final snapshot regardless of throttling.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitLocked(time.Now())
}

// Snapshot returns the current counters without emitting.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(time.Now())
}

func (t *Tracker) emitLocked(now time.Time) {
	if t.sink == nil {
		return
	}
	t.lastEmit = now
	t.sink(t.snapshotLocked(now))
}

func (t *Tracker) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Phase:       t.phase,
		Total:       t.total,
		HasTotal:    t.hasTotal,
		Completed:   t.completed,
		Transferred: t.transferred,
		Skipped:     t.skipped,
		Errors:      t.errors,
		CurrentItem: t.currentItem,
	}
	elapsed := now.Sub(t.start).Seconds()
	if t.completed > 0 && elapsed > 0 {
		rate := float64(t.completed) / elapsed
		snap.Throughput = fmt.Sprintf("%.1f items/s", rate)
		if t.hasTotal && rate > 0 && t.total > t.completed {
			remaining := time.Duration(float64(t.total-t.completed)/rate) * time.Second
			snap.ETA = remaining.Round(time.Second).String()
		}
	}
	return snap
}
