package review

import (
	"context"
	"sync"
)

// RunFunc executes a single analysis mode and returns its outcome.
// Implementations own prompt construction, backend invocation and result
// persistence; the runner only schedules them.
type RunFunc func(ctx context.Context, mode Mode) (*Outcome, error)

// StatusCallback is invoked when a mode's execution status changes.
type StatusCallback func(mode Mode, status Status)

// Runner coordinates the parallel execution of multiple analysis modes.
// Each mode works on its own prompt and output buffer, so no locking is
// needed here beyond the WaitGroup.
type Runner struct {
	runFunc        RunFunc
	statusCallback StatusCallback
}

// NewRunner creates a Runner. statusCallback may be nil.
func NewRunner(runFunc RunFunc, statusCallback StatusCallback) *Runner {
	return &Runner{
		runFunc:        runFunc,
		statusCallback: statusCallback,
	}
}

// Run executes all given modes in parallel and returns outcomes in the same
// order as modes. A failed mode yields an Outcome with StatusFailed rather
// than aborting the others.
func (r *Runner) Run(ctx context.Context, modes []Mode) []*Outcome {
	outcomes := make([]*Outcome, len(modes))
	var wg sync.WaitGroup

	for i, mode := range modes {
		wg.Add(1)
		go func(idx int, m Mode) {
			defer wg.Done()

			if r.statusCallback != nil {
				r.statusCallback(m, StatusRunning)
			}

			outcome, err := r.runFunc(ctx, m)
			if err != nil {
				outcome = &Outcome{
					Mode:   m,
					Status: StatusFailed,
					Error:  err.Error(),
				}
			}
			outcomes[idx] = outcome

			if r.statusCallback != nil {
				if outcome.Status == StatusFailed {
					r.statusCallback(m, StatusFailed)
				} else {
					r.statusCallback(m, StatusDone)
				}
			}
		}(i, mode)
	}

	wg.Wait()
	return outcomes
}

// Summary aggregates statistics from a set of run outcomes.
type Summary struct {
	TotalModes int
	Succeeded  int
	Fallbacks  int
	Failed     int
}

// Summarize counts successes, fallback substitutions and failures.
func Summarize(outcomes []*Outcome) Summary {
	var s Summary
	s.TotalModes = len(outcomes)
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		switch {
		case o.Status == StatusFailed:
			s.Failed++
		case o.Fallback:
			s.Fallbacks++
			s.Succeeded++
		default:
			s.Succeeded++
		}
	}
	return s
}
