package ratelimit

import (
	"sync"
	"time"

	"github.com/garyellow/programme-matcher/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name labels the limiter in metrics, e.g. "assistant".
	Name string

	Burst      float64 // bucket capacity
	RefillRate float64 // tokens per second

	// DailyLimit enables a rolling 24h quota when positive.
	DailyLimit int

	CleanupPeriod time.Duration
	Metrics       *metrics.Metrics

	// Clock overrides time.Now in tests.
	Clock Clock
}

// Quota is a key's remaining allowance.
type Quota struct {
	Available      float64 `json:"available"`
	DailyRemaining int     `json:"dailyRemaining"` // -1 when no daily limit
}

// KeyedLimiter keeps one bucket and daily counter per key and drops idle
// keys periodically.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
	once    sync.Once
}

// keyedEntry.mu makes the two-layer check and consume atomic.
type keyedEntry struct {
	mu     sync.Mutex
	bucket *Limiter
	daily  *SlidingWindowCounter
}

// NewKeyedLimiter starts the cleanup loop; call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow reports whether key may make a request, consuming from both the
// bucket and the daily quota only when both permit it. An empty key is
// never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	entry := kl.entry(key)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.daily.Check() || !entry.bucket.Check() {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
		return false
	}
	entry.daily.Consume()
	entry.bucket.Consume()
	return true
}

func (kl *KeyedLimiter) entry(key string) *keyedEntry {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return e
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if e, ok := kl.entries[key]; ok {
		return e
	}
	e = &keyedEntry{
		bucket: newWithClock(kl.config.Burst, kl.config.RefillRate, kl.config.Clock),
		daily:  newSlidingWindowWithClock(kl.config.DailyLimit, 24*time.Hour, kl.config.Clock),
	}
	kl.entries[key] = e
	return e
}

// Quota returns the allowance left for key without consuming any.
func (kl *KeyedLimiter) Quota(key string) Quota {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()

	if !ok {
		daily := kl.config.DailyLimit
		if daily <= 0 {
			daily = -1
		}
		return Quota{Available: kl.config.Burst, DailyRemaining: daily}
	}
	return Quota{Available: e.bucket.Available(), DailyRemaining: e.daily.Remaining()}
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// sweep drops keys whose bucket is full and whose daily window is empty.
func (kl *KeyedLimiter) sweep() {
	kl.mu.Lock()
	for key, e := range kl.entries {
		if e.bucket.IsFull() && e.daily.Effective() == 0 {
			delete(kl.entries, key)
		}
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	kl.config.Metrics.SetRateLimiterUsers(kl.config.Name, active)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.sweep()
		}
	}
}

// Stop ends the cleanup loop. Safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	kl.once.Do(func() { close(kl.stopCh) })
}
