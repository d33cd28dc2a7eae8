package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunnerRunsAllModesInParallel(t *testing.T) {
	var mu sync.Mutex
	started := map[Mode]time.Time{}

	runFunc := func(ctx context.Context, mode Mode) (*Outcome, error) {
		mu.Lock()
		started[mode] = time.Now()
		mu.Unlock()
		time.Sleep(50 * time.Millisecond)
		return &Outcome{Mode: mode, Status: StatusDone, Result: "{}"}, nil
	}

	begin := time.Now()
	outcomes := NewRunner(runFunc, nil).Run(context.Background(), AllModes())
	elapsed := time.Since(begin)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, mode := range AllModes() {
		if outcomes[i] == nil || outcomes[i].Mode != mode {
			t.Errorf("outcome %d is %+v, want mode %s", i, outcomes[i], mode)
		}
	}
	// Serial execution would take at least 150ms.
	if elapsed > 120*time.Millisecond {
		t.Errorf("modes do not appear to run in parallel (took %v)", elapsed)
	}
	if len(started) != 3 {
		t.Errorf("only %d modes started", len(started))
	}
}

func TestRunnerConvertsErrorToFailedOutcome(t *testing.T) {
	runFunc := func(ctx context.Context, mode Mode) (*Outcome, error) {
		if mode == ModePriority {
			return nil, errors.New("backend exploded")
		}
		return &Outcome{Mode: mode, Status: StatusDone}, nil
	}

	outcomes := NewRunner(runFunc, nil).Run(context.Background(), AllModes())

	for i, mode := range AllModes() {
		o := outcomes[i]
		if mode == ModePriority {
			if o.Status != StatusFailed || o.Error != "backend exploded" {
				t.Errorf("priority outcome = %+v, want failed", o)
			}
		} else if o.Status != StatusDone {
			t.Errorf("%s outcome = %+v, want done", mode, o)
		}
	}
}

func TestRunnerStatusCallbacks(t *testing.T) {
	var mu sync.Mutex
	transitions := map[Mode][]Status{}

	callback := func(mode Mode, status Status) {
		mu.Lock()
		transitions[mode] = append(transitions[mode], status)
		mu.Unlock()
	}
	runFunc := func(ctx context.Context, mode Mode) (*Outcome, error) {
		if mode == ModeAnalyze {
			return nil, errors.New("nope")
		}
		return &Outcome{Mode: mode, Status: StatusDone}, nil
	}

	NewRunner(runFunc, callback).Run(context.Background(), AllModes())

	for _, mode := range AllModes() {
		got := transitions[mode]
		if len(got) != 2 || got[0] != StatusRunning {
			t.Fatalf("%s transitions = %v, want [running, terminal]", mode, got)
		}
		want := StatusDone
		if mode == ModeAnalyze {
			want = StatusFailed
		}
		if got[1] != want {
			t.Errorf("%s final status = %s, want %s", mode, got[1], want)
		}
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []*Outcome{
		{Mode: ModeReview, Status: StatusDone},
		{Mode: ModeAnalyze, Status: StatusDone, Fallback: true},
		{Mode: ModePriority, Status: StatusFailed, Error: "x"},
		nil,
	}

	s := Summarize(outcomes)
	if s.TotalModes != 4 || s.Succeeded != 2 || s.Fallbacks != 1 || s.Failed != 1 {
		t.Errorf("Summarize = %+v", s)
	}
}
