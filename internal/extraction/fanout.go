package extraction

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/turtacn/MarkIP-Intelligence/internal/oracle"
	apperrors "github.com/turtacn/MarkIP-Intelligence/pkg/errors"
)

// WorkItem is one unit of fan-out work: a keyed extraction call.
type WorkItem struct {
	Key     string
	Execute func(ctx context.Context) oracle.Result
}

// FanOut runs all items concurrently, bounded by min(len(items),
// maxWorkers), and collects one Candidate per item. A failed item yields
// an error-tagged candidate; it never aborts its siblings. Results arrive
// in completion order, so callers that need submission order must re-sort
// by key.
//
// FanOut itself fails only when the scheduling machinery does (context
// cancelled before all workers could be admitted).
func FanOut(ctx context.Context, maxWorkers int, items []WorkItem) ([]Candidate, error) {
	if len(items) == 0 {
		return nil, nil
	}
	workers := maxWorkers
	if len(items) < workers {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	results := make(chan Candidate, len(items))
	var wg sync.WaitGroup

	var schedErr error
	for _, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			schedErr = apperrors.Wrap(err, apperrors.ErrCodeSchedulerFailed, "could not admit extraction worker")
			break
		}
		wg.Add(1)
		go func(item WorkItem) {
			defer wg.Done()
			defer sem.Release(1)
			results <- CandidateFromResult(item.Key, item.Execute(ctx))
		}(item)
	}

	wg.Wait()
	close(results)

	candidates := make([]Candidate, 0, len(items))
	for c := range results {
		candidates = append(candidates, c)
	}
	if schedErr != nil {
		return candidates, schedErr
	}
	return candidates, nil
}

// CandidatesByKey indexes fan-out output by originating work-item key.
func CandidatesByKey(candidates []Candidate) map[string]Candidate {
	out := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		out[c.Key] = c
	}
	return out
}
