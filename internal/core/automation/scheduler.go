package automation

import (
	"context"
	"sync"
	"time"

	"github.com/charleschow/tennis-trading/internal/telemetry"
)

// Scheduler drives the runner on a fixed interval. Start runs one cycle
// immediately, then ticks; Stop halts the loop without touching a cycle
// already in flight. Start/Stop are idempotent and callable from the API.
type Scheduler struct {
	runner   *Runner
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	nextRun time.Time
}

func NewScheduler(runner *Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

type SchedulerState struct {
	Running         bool      `json:"running"`
	IntervalMinutes float64   `json:"interval_minutes"`
	NextRun         time.Time `json:"next_run,omitzero"`
}

func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerState{
		Running:         s.cancel != nil,
		IntervalMinutes: s.interval.Minutes(),
		NextRun:         s.nextRun,
	}
}

// Start launches the periodic loop under parent. Already running = no-op.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.nextRun = time.Now().Add(s.interval)
	telemetry.Metrics.SchedulerActive.Set(1)
	telemetry.Infof("automation: scheduler started — running every %s", s.interval)

	go s.loop(ctx)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.nextRun = time.Time{}
	telemetry.Metrics.SchedulerActive.Set(0)
	telemetry.Infof("automation: scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) loop(ctx context.Context) {
	// First cycle fires immediately so a fresh start doesn't sit idle for
	// a whole interval.
	s.runner.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.nextRun = time.Now().Add(s.interval)
			s.mu.Unlock()
			s.runner.RunCycle(ctx)
		}
	}
}
