package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-notifier/internal/weather"
)

var testIntervals = Intervals{
	UpdateInterval:   10 * time.Minute,
	RetryDelay:       2500 * time.Millisecond,
	InitialLoadDelay: 3 * time.Second,
}

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name             string
		failed, everOkay bool
		want             time.Duration
	}{
		{"first cycle fails", true, false, testIntervals.RetryDelay},
		{"cycle succeeds", false, true, testIntervals.UpdateInterval},
		{"failure after success", true, true, testIntervals.UpdateInterval},
		{"success not yet recorded", false, false, testIntervals.UpdateInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDelay(tt.failed, tt.everOkay, testIntervals))
		})
	}
}

// fakeTimer records armed delays and fires callbacks on demand.
type fakeTimer struct {
	mu      sync.Mutex
	delays  []time.Duration
	pending func()
	stopped bool
}

func (f *fakeTimer) AfterFunc(d time.Duration, fn func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	f.pending = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.pending = nil
	}, nil
}

func (f *fakeTimer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// take removes and returns the armed callback.
func (f *fakeTimer) take(t *testing.T) func() {
	t.Helper()
	f.mu.Lock()
	fn := f.pending
	f.pending = nil
	f.mu.Unlock()
	require.NotNil(t, fn, "nothing armed")
	return fn
}

// fire runs the armed callback synchronously.
func (f *fakeTimer) fire(t *testing.T) {
	t.Helper()
	f.take(t)()
}

func (f *fakeTimer) armed() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.delays...)
}

// scriptedRunner returns one scripted outcome per cycle.
type scriptedRunner struct {
	mu       sync.Mutex
	failures []bool
	calls    int
	block    chan struct{}
	started  chan struct{}
}

func (r *scriptedRunner) RunCycle(ctx context.Context) weather.CycleResult {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	failed := r.calls < len(r.failures) && r.failures[r.calls]
	r.calls++

	result := weather.CycleResult{ID: "cycle", Provider: "fake"}
	if failed {
		result.Failures = []weather.BranchFailure{{Dataset: weather.DatasetHourly, Kind: "transport"}}
	}
	return result
}

func TestSchedulerDelays(t *testing.T) {
	timer := &fakeTimer{}
	runner := &scriptedRunner{failures: []bool{true, false, true}}

	var reports []Report
	s := New(runner, testIntervals, WithTimer(timer), WithObserver(func(r Report) {
		reports = append(reports, r)
	}))
	require.NoError(t, s.Start())

	timer.fire(t) // first cycle fails
	timer.fire(t) // second succeeds
	timer.fire(t) // third fails after a success
	s.Stop()

	assert.Equal(t, []time.Duration{
		testIntervals.InitialLoadDelay,
		testIntervals.RetryDelay,
		testIntervals.UpdateInterval,
		testIntervals.UpdateInterval,
	}, timer.armed())

	require.Len(t, reports, 3)
	assert.False(t, reports[0].State.HasEverSucceeded)
	assert.True(t, reports[1].State.HasEverSucceeded)
	assert.True(t, reports[2].State.HasEverSucceeded)
	assert.Equal(t, uint64(3), s.State().Cycles)
	assert.True(t, timer.stopped)
}

func TestSchedulerRetriesUntilFirstSuccess(t *testing.T) {
	timer := &fakeTimer{}
	runner := &scriptedRunner{failures: []bool{true, true, true}}
	s := New(runner, testIntervals, WithTimer(timer))
	require.NoError(t, s.Start())

	for i := 0; i < 3; i++ {
		timer.fire(t)
	}
	s.Stop()

	armed := timer.armed()
	require.Len(t, armed, 4)
	for _, d := range armed[1:] {
		assert.Equal(t, testIntervals.RetryDelay, d)
	}
	assert.False(t, s.State().HasEverSucceeded)
}

func TestTriggerNowIsSingleFlight(t *testing.T) {
	timer := &fakeTimer{}
	runner := &scriptedRunner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := New(runner, testIntervals, WithTimer(timer))
	require.NoError(t, s.Start())

	require.NoError(t, s.TriggerNow())
	<-runner.started

	assert.ErrorIs(t, s.TriggerNow(), ErrCycleInFlight)

	// A scheduled run while busy is skipped rather than queued.
	timer.fire(t)

	close(runner.block)
	s.Stop()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, 1, runner.calls)
}

func TestTriggerNowAfterStop(t *testing.T) {
	s := New(&scriptedRunner{}, testIntervals, WithTimer(&fakeTimer{}))
	require.NoError(t, s.Start())
	s.Stop()

	assert.ErrorIs(t, s.TriggerNow(), ErrStopped)
	assert.ErrorIs(t, s.Start(), ErrStopped)
}

func TestCycleTimeoutBoundsRunner(t *testing.T) {
	timer := &fakeTimer{}
	runner := &scriptedRunner{block: make(chan struct{})}
	s := New(runner, testIntervals, WithTimer(timer), WithCycleTimeout(20*time.Millisecond))
	require.NoError(t, s.Start())

	fire := timer.take(t)
	done := make(chan struct{})
	go func() {
		fire()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle was not bounded by its timeout")
	}
	s.Stop()
}
