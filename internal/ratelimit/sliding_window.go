package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter approximates a rolling window quota from two fixed
// windows: the previous window's count is weighted by how much of it still
// overlaps the rolling window.
//
//	effective = current + previous * (window - elapsed) / window
//
// A nil counter is unlimited.
type SlidingWindowCounter struct {
	mu          sync.Mutex
	currCount   int
	prevCount   int
	windowStart time.Time
	window      time.Duration
	maxRequests int
	now         Clock
}

// NewSlidingWindowCounter returns nil when maxRequests is not positive.
func NewSlidingWindowCounter(maxRequests int, window time.Duration) *SlidingWindowCounter {
	return newSlidingWindowWithClock(maxRequests, window, time.Now)
}

func newSlidingWindowWithClock(maxRequests int, window time.Duration, now Clock) *SlidingWindowCounter {
	if maxRequests <= 0 {
		return nil
	}
	return &SlidingWindowCounter{
		windowStart: now(),
		window:      window,
		maxRequests: maxRequests,
		now:         now,
	}
}

// rotate must be called with mu held.
func (c *SlidingWindowCounter) rotate(now time.Time) {
	elapsed := now.Sub(c.windowStart)
	if elapsed < c.window {
		return
	}
	passed := int(elapsed / c.window)
	if passed == 1 {
		c.prevCount = c.currCount
	} else {
		c.prevCount = 0
	}
	c.currCount = 0
	c.windowStart = c.windowStart.Add(time.Duration(passed) * c.window)
}

// effective must be called with mu held, after rotate.
func (c *SlidingWindowCounter) effective(now time.Time) float64 {
	overlap := float64(c.window-now.Sub(c.windowStart)) / float64(c.window)
	overlap = max(0, min(1, overlap))
	return float64(c.currCount) + float64(c.prevCount)*overlap
}

func (c *SlidingWindowCounter) locked(fn func(effective float64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.rotate(now)
	fn(c.effective(now))
}

// Allow counts a request if the quota permits it.
func (c *SlidingWindowCounter) Allow() bool {
	if c == nil {
		return true
	}
	allowed := false
	c.locked(func(eff float64) {
		if eff < float64(c.maxRequests) {
			c.currCount++
			allowed = true
		}
	})
	return allowed
}

// Check reports whether a request would be counted.
func (c *SlidingWindowCounter) Check() bool {
	if c == nil {
		return true
	}
	ok := false
	c.locked(func(eff float64) { ok = eff < float64(c.maxRequests) })
	return ok
}

// Consume counts a request if the quota still permits it.
func (c *SlidingWindowCounter) Consume() {
	if c == nil {
		return
	}
	c.locked(func(eff float64) {
		if eff < float64(c.maxRequests) {
			c.currCount++
		}
	})
}

// Effective returns the weighted request count.
func (c *SlidingWindowCounter) Effective() float64 {
	if c == nil {
		return 0
	}
	var out float64
	c.locked(func(eff float64) { out = eff })
	return out
}

// Remaining returns the whole requests left, or -1 for a nil counter.
func (c *SlidingWindowCounter) Remaining() int {
	if c == nil {
		return -1
	}
	var out int
	c.locked(func(eff float64) { out = max(0, int(float64(c.maxRequests)-eff)) })
	return out
}
