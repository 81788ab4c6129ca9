package sync

import (
	"github.com/dl-alexandre/dsync/internal/sync/policy"
)

// Outcome records the result of one item's sync decision. A run always
// produces one outcome per visited leaf item, whether it transferred,
// was skipped, or failed.
type Outcome struct {
	Path        string        `json:"path"`
	ItemID      string        `json:"itemId,omitempty"`
	Transferred bool          `json:"transferred"`
	Reason      policy.Reason `json:"reason"`
	Size        int64         `json:"size,omitempty"`
	Error       string        `json:"error,omitempty"`

	Err error `json:"-"`
}

func errorOutcome(path, itemID string, err error) Outcome {
	return Outcome{
		Path:   path,
		ItemID: itemID,
		Error:  err.Error(),
		Err:    err,
	}
}

// Summary aggregates an outcome list for reporting.
type Summary struct {
	Total       int `json:"total"`
	Transferred int `json:"transferred"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Summarize tallies outcomes into a summary.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Transferred:
			s.Transferred++
		default:
			s.Skipped++
		}
	}
	return s
}

func firstOutcomeErr(outcomes []Outcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}
