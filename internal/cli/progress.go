package cli

import (
	"fmt"

	tm "github.com/buger/goterm"
	"github.com/dl-alexandre/dsync/internal/sync/progress"
)

// progressView renders throttled progress snapshots on a single terminal
// line, rewriting it in place.
type progressView struct {
	rendered bool
}

func newProgressView() *progressView {
	return &progressView{}
}

// Render is a progress.Sink.
func (v *progressView) Render(s progress.Snapshot) {
	v.rendered = true

	if s.Phase == progress.PhaseScanning {
		tm.Print("\r" + tm.Color("scanning remote tree...", tm.YELLOW))
		tm.Flush()
		return
	}

	line := fmt.Sprintf("%d", s.Completed)
	if s.HasTotal {
		line = fmt.Sprintf("%d/%d", s.Completed, s.Total)
	}
	line += fmt.Sprintf("  %d transferred, %d skipped", s.Transferred, s.Skipped)
	if s.Errors > 0 {
		line += tm.Color(fmt.Sprintf(", %d failed", s.Errors), tm.RED)
	}
	if s.Throughput != "" {
		line += "  " + s.Throughput
	}
	if s.ETA != "" {
		line += "  eta " + s.ETA
	}
	if s.CurrentItem != "" {
		line += "  " + truncate(s.CurrentItem, 30)
	}

	// Pad to clear leftovers from a longer previous line.
	tm.Printf("\r%-100s", line)
	tm.Flush()
}

// Done terminates the progress line so later output starts fresh.
func (v *progressView) Done() {
	if !v.rendered {
		return
	}
	tm.Println()
	tm.Flush()
}
