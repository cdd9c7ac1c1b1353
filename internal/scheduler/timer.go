package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
)

// Timer arms one-shot callbacks and returns a handle that cancels them.
type Timer interface {
	AfterFunc(d time.Duration, f func()) (cancel func(), err error)
	Stop()
}

// GocronTimer runs each armed callback as a single-run gocron job.
type GocronTimer struct {
	scheduler *gocron.Scheduler
}

// NewGocronTimer creates a GocronTimer whose scheduler is already running.
func NewGocronTimer() *GocronTimer {
	s := gocron.NewScheduler(time.UTC)
	s.StartAsync()
	return &GocronTimer{scheduler: s}
}

func (t *GocronTimer) AfterFunc(d time.Duration, f func()) (func(), error) {
	// gocron rejects non-positive intervals; a job without WaitForSchedule
	// runs as soon as it is added, which is what a zero delay means.
	var (
		job *gocron.Job
		err error
	)
	if d <= 0 {
		job, err = t.scheduler.Every(time.Hour).LimitRunsTo(1).Do(f)
	} else {
		job, err = t.scheduler.Every(d).WaitForSchedule().LimitRunsTo(1).Do(f)
	}
	if err != nil {
		return nil, err
	}
	return func() { t.scheduler.RemoveByReference(job) }, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (t *GocronTimer) Stop() {
	if t.scheduler != nil {
		t.scheduler.Stop()
	}
}
