package batch

import (
	"context"
	"sync"

	"github.com/dl-alexandre/dsync/internal/logging"
)

// Options controls how a batch run schedules its workers.
type Options struct {
	// Concurrency is the chunk size; values below 1 are clamped to 1.
	Concurrency int
	// StopOnError stops scheduling new chunks after any worker in a
	// completed chunk has failed. Workers already running finish normally.
	StopOnError bool
	Logger      logging.Logger
}

// Run executes worker over items in chunks of at most Concurrency goroutines.
// A chunk must fully settle before the next chunk starts, so no more than
// Concurrency workers are ever in flight.
//
// Results are returned in item order. A failing worker's error is logged and
// its result excluded; the first error encountered is returned alongside the
// surviving results so callers can decide whether it is fatal.
func Run[I, R any](ctx context.Context, items []I, opts Options, worker func(context.Context, I) (R, error)) ([]R, error) {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	results := make([]R, 0, len(items))
	var firstErr error

	for start := 0; start < len(items); start += concurrency {
		if err := ctx.Err(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}

		end := start + concurrency
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		chunkResults := make([]R, len(chunk))
		chunkErrs := make([]error, len(chunk))

		var wg sync.WaitGroup
		for i, item := range chunk {
			wg.Add(1)
			go func(i int, item I) {
				defer wg.Done()
				chunkResults[i], chunkErrs[i] = worker(ctx, item)
			}(i, item)
		}
		wg.Wait()

		for i := range chunk {
			if chunkErrs[i] != nil {
				logger.Warn("batch worker failed",
					logging.F("index", start+i),
					logging.F("error", chunkErrs[i].Error()),
				)
				if firstErr == nil {
					firstErr = chunkErrs[i]
				}
				continue
			}
			results = append(results, chunkResults[i])
		}

		if opts.StopOnError && firstErr != nil {
			break
		}
	}

	return results, firstErr
}

// FolderConcurrency derives the recursion width from the leaf transfer
// width. Folder workers fan out into whole subtrees, so they get half the
// budget, never less than one.
func FolderConcurrency(leafConcurrency int) int {
	c := leafConcurrency / 2
	if c < 1 {
		return 1
	}
	return c
}
