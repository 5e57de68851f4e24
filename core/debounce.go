package core

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of requests into one trailing-edge invocation:
// fn runs once the interval elapses with no further request. A new request
// always supersedes the pending timer.
type debouncer struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration, fn func()) *debouncer {
	return &debouncer{interval: interval, fn: fn}
}

// Request schedules fn after the quiescence interval, cancelling any pending
// invocation. Safe to call from any goroutine.
func (d *debouncer) Request() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fn)
}

// Stop cancels any pending invocation and rejects further requests.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
