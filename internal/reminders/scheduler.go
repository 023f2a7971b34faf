package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/eventra/eventra/pkg/logger"
)

const defaultPollInterval = time.Minute

// State models the scheduler lifecycle.
type State int

const (
	// StateStopped means no poll loop is scheduled.
	StateStopped State = iota
	// StateRunning means the cron runner is ticking.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Scheduler drives Engine.RunOnce on a fixed cadence. Lifecycle is an
// explicit Stopped/Running state machine: repeated Start calls are logged
// no-ops and Stop removes the cron entry so no tick outlives it.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger

	mu      sync.Mutex
	state   State
	cron    *cron.Cron
	entryID cron.EntryID
}

// SchedulerOption customises the Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval overrides the poll cadence.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) SchedulerOption {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock supplied to each poll cycle.
func WithNow(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler constructs a Scheduler around the engine.
func NewScheduler(engine *Engine, opts ...SchedulerOption) (*Scheduler, error) {
	if engine == nil {
		return nil, errors.New("reminder scheduler: engine is required")
	}

	scheduler := &Scheduler{
		engine:   engine,
		interval: defaultPollInterval,
		now:      time.Now,
		log:      logger.WithModule("reminders"),
		state:    StateStopped,
	}
	for _, opt := range opts {
		opt(scheduler)
	}

	if scheduler.cron == nil {
		scheduler.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return scheduler, nil
}

// Start transitions Stopped → Running and begins ticking. Calling Start on
// a running scheduler is a warning-level no-op, never a second loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		s.log.Warn("scheduler already running")
		return nil
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.tick)
	if err != nil {
		return fmt.Errorf("reminder scheduler: schedule poll: %w", err)
	}

	s.entryID = id
	s.cron.Start()
	s.state = StateRunning
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop transitions Running → Stopped, removes the poll entry, and halts the
// cron runner. The returned context completes when in-flight jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		done, cancel := context.WithCancel(context.Background())
		cancel()
		return done
	}

	s.cron.Remove(s.entryID)
	ctx := s.cron.Stop()
	s.state = StateStopped
	s.log.Info("scheduler stopped")
	return ctx
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) tick() {
	if err := s.engine.RunOnce(context.Background(), s.now()); err != nil {
		s.log.Warn("poll cycle completed with errors", zap.Error(err))
	}
}
