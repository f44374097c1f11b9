package warmup

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	nanos atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.nanos.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time          { return time.Unix(0, c.nanos.Load()) }
func (c *fakeClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }

func TestReadinessStateInitial(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	if state.IsReady() {
		t.Error("Expected IsReady() to return false initially")
	}
	if state.WarmupCompleted() {
		t.Error("Expected WarmupCompleted() to return false initially")
	}

	status := state.Status()
	if status.Ready {
		t.Error("Expected status.Ready to be false initially")
	}
	if status.Reason != "warmup in progress" {
		t.Errorf("Expected reason 'warmup in progress', got %q", status.Reason)
	}
}

func TestReadinessStateMarkReady(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	state.MarkReady()

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after MarkReady()")
	}
	if !state.WarmupCompleted() {
		t.Error("Expected WarmupCompleted() to return true after MarkReady()")
	}
	if status := state.Status(); !status.Ready || status.Reason != "" {
		t.Errorf("Status() = %+v, want ready without reason", status)
	}
}

func TestReadinessStateTimeout(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	state := newReadinessState(time.Minute, clock.Now)

	if state.IsReady() {
		t.Error("Expected IsReady() to return false before timeout")
	}

	clock.Advance(61 * time.Second)

	if !state.IsReady() {
		t.Error("Expected IsReady() to return true after timeout")
	}
	if state.WarmupCompleted() {
		t.Error("Expected WarmupCompleted() to return false (warmup didn't finish)")
	}

	status := state.Status()
	if status.Reason != "timeout reached (reference data loads lazily)" {
		t.Errorf("Expected timeout reason, got %q", status.Reason)
	}
	if status.ElapsedSeconds != 61 || status.TimeoutSeconds != 60 {
		t.Errorf("Elapsed/Timeout = %d/%d, want 61/60", status.ElapsedSeconds, status.TimeoutSeconds)
	}
}

func TestReadinessStateMarkFailed(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	state.MarkFailed(nil)
	if state.Status().LastError != "" {
		t.Error("MarkFailed(nil) must not record an error")
	}

	state.MarkFailed(errors.New("occupations: object not found"))
	status := state.Status()
	if status.Ready {
		t.Error("Expected not ready after failed warmup")
	}
	if status.Reason != "warmup failed" || status.LastError != "occupations: object not found" {
		t.Errorf("Status() = %+v", status)
	}

	state.MarkReady()
	if status := state.Status(); !status.Ready || status.LastError != "" {
		t.Errorf("Status() after recovery = %+v", status)
	}
}

func TestReadinessStateConcurrent(t *testing.T) {
	t.Parallel()
	state := NewReadinessState(10 * time.Minute)

	const goroutines = 50
	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range 100 {
				_ = state.IsReady()
				_ = state.Status()
			}
		})
		wg.Go(func() {
			for range 100 {
				state.MarkFailed(errors.New("transient"))
				state.MarkReady()
			}
		})
	}
	wg.Wait()

	if !state.WarmupCompleted() {
		t.Error("Expected WarmupCompleted() after concurrent MarkReady calls")
	}
}
