package warmup

import (
	"sync/atomic"
	"time"
)

// ReadinessState gates /readyz on the startup reference warmup. The service
// becomes ready when warmup finishes or when the grace period elapses, so a
// slow object store degrades to lazy loading instead of an outage.
type ReadinessState struct {
	ready     atomic.Bool
	lastError atomic.Pointer[string]
	startTime time.Time
	timeout   time.Duration
	now       func() time.Time
}

// ReadinessStatus is the JSON body of /readyz.
type ReadinessStatus struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason,omitempty"`
	LastError      string `json:"last_error,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// NewReadinessState starts the grace period now.
func NewReadinessState(timeout time.Duration) *ReadinessState {
	return newReadinessState(timeout, time.Now)
}

func newReadinessState(timeout time.Duration, now func() time.Time) *ReadinessState {
	return &ReadinessState{
		startTime: now(),
		timeout:   timeout,
		now:       now,
	}
}

// IsReady reports whether traffic should be accepted.
func (s *ReadinessState) IsReady() bool {
	return s.ready.Load() || s.now().Sub(s.startTime) >= s.timeout
}

// MarkReady records a completed warmup and clears any earlier failure.
func (s *ReadinessState) MarkReady() {
	s.lastError.Store(nil)
	s.ready.Store(true)
}

// MarkFailed records a failed warmup. The state stays not ready until the
// grace period elapses or a later warmup succeeds.
func (s *ReadinessState) MarkFailed(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	s.lastError.Store(&msg)
}

// WarmupCompleted reports whether MarkReady was called, ignoring the timeout.
func (s *ReadinessState) WarmupCompleted() bool {
	return s.ready.Load()
}

// Status returns the current readiness for API responses.
func (s *ReadinessState) Status() ReadinessStatus {
	status := ReadinessStatus{
		Ready:          s.IsReady(),
		ElapsedSeconds: int(s.now().Sub(s.startTime).Seconds()),
		TimeoutSeconds: int(s.timeout.Seconds()),
	}
	if p := s.lastError.Load(); p != nil {
		status.LastError = *p
	}

	switch {
	case !status.Ready && status.LastError != "":
		status.Reason = "warmup failed"
	case !status.Ready:
		status.Reason = "warmup in progress"
	case !s.ready.Load():
		status.Reason = "timeout reached (reference data loads lazily)"
	}
	return status
}
