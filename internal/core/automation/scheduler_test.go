package automation

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerStartStop(t *testing.T) {
	f := newFixture(t)
	s := NewScheduler(f.runner, time.Hour)

	if s.Running() {
		t.Fatal("running before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	if !s.Running() {
		t.Fatal("not running after Start")
	}
	// Start is idempotent.
	s.Start(ctx)

	// The first cycle fires immediately, not after the first interval.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if last, _ := f.runner.LastSummary(); last != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("immediate cycle never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}

	state := s.State()
	if !state.Running || state.IntervalMinutes != 60 {
		t.Errorf("state: %+v", state)
	}

	s.Stop()
	if s.Running() {
		t.Fatal("still running after Stop")
	}
	s.Stop() // idempotent
}
