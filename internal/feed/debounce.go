package feed

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// Scheduler arms a timer that runs f after d
type Scheduler func(d time.Duration, f func()) Timer

func realScheduler(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds at most one pending trigger. Each Trigger replaces the
// pending one and restarts the quiet period; when it elapses the latest
// function is handed to post.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	schedule   Scheduler
	post       func(func()) bool
	onCollapse func()

	timer   Timer
	seq     uint64
	stopped bool
}

// NewDebouncer creates a debouncer. post delivers fired functions, normally
// Loop.Post. onCollapse may be nil.
func NewDebouncer(delay time.Duration, schedule Scheduler, post func(func()) bool, onCollapse func()) *Debouncer {
	if schedule == nil {
		schedule = realScheduler
	}
	return &Debouncer{
		delay:      delay,
		schedule:   schedule,
		post:       post,
		onCollapse: onCollapse,
	}
}

// Trigger schedules fn, superseding any pending trigger
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		if d.onCollapse != nil {
			d.onCollapse()
		}
	}

	d.seq++
	seq := d.seq
	d.timer = d.schedule(d.delay, func() {
		d.mu.Lock()
		if d.stopped || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.post(fn)
	})
}

// Pending reports whether a trigger is waiting for its quiet period
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending trigger. Later Triggers still arm.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending trigger; later Triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
