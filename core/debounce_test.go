package core

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceCoalescesBurst(t *testing.T) {
	var runs atomic.Int32
	d := newDebouncer(100*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Request()
		time.Sleep(20 * time.Millisecond)
	}
	if got := runs.Load(); got != 0 {
		t.Fatalf("expected no run during burst, got %d", got)
	}
	waitForRuns(t, &runs, 1, time.Second)
	time.Sleep(150 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected exactly one run, got %d", got)
	}
}

func TestDebounceRequestSupersedesPending(t *testing.T) {
	var runs atomic.Int32
	d := newDebouncer(120*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Request()
	time.Sleep(80 * time.Millisecond)
	d.Request()
	time.Sleep(80 * time.Millisecond)
	// The first schedule would have fired by now; the reschedule pushed it out.
	if got := runs.Load(); got != 0 {
		t.Fatalf("expected pending run to be superseded, got %d runs", got)
	}
	waitForRuns(t, &runs, 1, time.Second)
}

func TestDebounceStopCancelsPending(t *testing.T) {
	var runs atomic.Int32
	d := newDebouncer(50*time.Millisecond, func() { runs.Add(1) })
	d.Request()
	d.Stop()
	time.Sleep(120 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("expected no run after stop, got %d", got)
	}
	d.Request()
	time.Sleep(120 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("expected request after stop to be rejected, got %d runs", got)
	}
}

func waitForRuns(t *testing.T, runs *atomic.Int32, want int32, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if runs.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d runs, got %d", want, runs.Load())
}
