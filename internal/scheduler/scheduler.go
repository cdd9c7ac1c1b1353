package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/i474232898/weather-notifier/internal/metrics"
	"github.com/i474232898/weather-notifier/internal/weather"
)

var (
	// ErrCycleInFlight is returned by TriggerNow while a cycle is running.
	ErrCycleInFlight = errors.New("scheduler: a fetch cycle is already in flight")
	// ErrStopped is returned once Stop has been called.
	ErrStopped = errors.New("scheduler: stopped")
)

// Intervals are the delays the scheduler chooses between.
type Intervals struct {
	UpdateInterval   time.Duration
	RetryDelay       time.Duration
	InitialLoadDelay time.Duration
}

// NextDelay returns how long to wait before the next cycle. Fast retries are
// only used until the first fully successful cycle; afterwards failures fall
// back to the normal poll interval.
func NextDelay(cycleHadAnyFailure, hasEverSucceeded bool, iv Intervals) time.Duration {
	if !cycleHadAnyFailure || hasEverSucceeded {
		return iv.UpdateInterval
	}
	return iv.RetryDelay
}

// Runner runs one fetch cycle.
type Runner interface {
	RunCycle(ctx context.Context) weather.CycleResult
}

// State is the only data carried from one cycle to the next.
type State struct {
	HasEverSucceeded bool   `json:"loaded"`
	Cycles           uint64 `json:"cycles"`
}

// Report describes a finished cycle and what the scheduler decided next.
type Report struct {
	Result    weather.CycleResult
	State     State
	NextDelay time.Duration
	Manual    bool
}

// Scheduler periodically runs fetch cycles, re-arming itself after each one.
type Scheduler struct {
	runner   Runner
	timer    Timer
	iv       Intervals
	timeout  time.Duration
	logger   *zap.Logger
	observer func(Report)
	inflight *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	disarm  func()
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimer replaces the gocron-backed timer.
func WithTimer(t Timer) Option {
	return func(s *Scheduler) { s.timer = t }
}

// WithLogger sets the scheduler logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithCycleTimeout bounds every cycle's context.
func WithCycleTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// WithObserver registers a callback invoked after every cycle.
func WithObserver(fn func(Report)) Option {
	return func(s *Scheduler) { s.observer = fn }
}

// New creates a new Scheduler.
func New(runner Runner, iv Intervals, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:   runner,
		iv:       iv,
		timeout:  30 * time.Second,
		logger:   zap.NewNop(),
		inflight: semaphore.NewWeighted(1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timer == nil {
		s.timer = NewGocronTimer()
	}
	s.logger = s.logger.Named("scheduler")
	return s
}

// Start arms the first cycle after the initial load delay.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info("scheduling first weather fetch", zap.Duration("delay", s.iv.InitialLoadDelay))
	s.arm(s.iv.InitialLoadDelay)
	return nil
}

// Stop cancels the armed cycle and any in-flight one, then waits for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.disarm != nil {
		s.disarm()
		s.disarm = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.timer.Stop()
}

// State returns a snapshot of the cross-cycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TriggerNow starts a cycle immediately unless one is already running.
func (s *Scheduler) TriggerNow() error {
	if !s.inflight.TryAcquire(1) {
		return ErrCycleInFlight
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.inflight.Release(1)
		return ErrStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(true)
	}()
	return nil
}

// fire is the timer continuation for an armed cycle.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if !s.inflight.TryAcquire(1) {
		// The running cycle re-arms when it finishes.
		s.logger.Warn("previous cycle still in flight; skipping scheduled run")
		return
	}
	s.execute(false)
}

// execute runs one cycle. The caller must hold the in-flight slot.
func (s *Scheduler) execute(manual bool) {
	defer s.inflight.Release(1)

	s.logger.Info("running weather fetch cycle", zap.Bool("manual", manual))

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	result := s.runner.RunCycle(ctx)
	cancel()

	failed := result.AnyFailure()

	s.mu.Lock()
	if !failed {
		s.state.HasEverSucceeded = true
	}
	s.state.Cycles++
	state := s.state
	stopped := s.stopped
	s.mu.Unlock()

	next := NextDelay(failed, state.HasEverSucceeded, s.iv)
	metrics.Scheduled(next, state.HasEverSucceeded)

	s.logger.Info("completed weather fetch cycle",
		zap.String("cycle", result.ID),
		zap.Bool("failed", failed),
		zap.Bool("loaded", state.HasEverSucceeded),
		zap.Duration("next", next))

	if s.observer != nil {
		s.observer(Report{Result: result, State: state, NextDelay: next, Manual: manual})
	}

	if !stopped {
		s.arm(next)
	}
}

// arm schedules the next cycle, replacing any previously armed one.
func (s *Scheduler) arm(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.disarm != nil {
		s.disarm()
		s.disarm = nil
	}

	disarm, err := s.timer.AfterFunc(d, s.fire)
	if err != nil {
		s.logger.Error("failed to arm scheduled cycle; falling back to runtime timer",
			zap.Duration("delay", d), zap.Error(err))
		t := time.AfterFunc(d, s.fire)
		disarm = func() { t.Stop() }
	}
	s.disarm = disarm
}
