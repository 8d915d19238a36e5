// Package ratelimit implements fixed-window rate limiting keyed by an
// arbitrary caller identity string, typically "<purpose>:<client-ip>".
package ratelimit

import (
	"sync"
	"time"
)

const (
	// Maximum number of counters to keep in memory.
	maxCounters = 10000
	// How often stale counters are pruned.
	cleanupInterval = 5 * time.Minute
	// A counter is stale once its window lies this far in the past.
	counterTTL = 30 * time.Minute
)

type counter struct {
	windowStart time.Time
	count       int
}

// FixedWindow counts calls per key within non-overlapping windows of fixed
// length anchored to wall-clock time. Updates are mutually exclusive so
// concurrent requests sharing a key cannot exceed the ceiling through lost
// updates.
type FixedWindow struct {
	mu       sync.Mutex
	counters map[string]*counter
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewFixedWindow creates a limiter with a background cleanup goroutine.
func NewFixedWindow() *FixedWindow {
	fw := &FixedWindow{
		counters: make(map[string]*counter),
		stopCh:   make(chan struct{}),
	}
	go fw.cleanupLoop()
	return fw
}

// Allow reports whether the next call for key is permitted given at most
// limit calls per window. The first limit calls within a window return
// true; every further call returns false until the window rolls over, at
// which point the count resets to zero.
func (fw *FixedWindow) Allow(key string, limit int, window time.Duration, now time.Time) bool {
	windowStart := now.Truncate(window)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	c, ok := fw.counters[key]
	if !ok || c.windowStart.Before(windowStart) {
		fw.counters[key] = &counter{windowStart: windowStart, count: 1}
		return true
	}

	if c.count >= limit {
		return false
	}
	c.count++
	return true
}

// Stop terminates the cleanup goroutine.
func (fw *FixedWindow) Stop() {
	fw.stopOnce.Do(func() { close(fw.stopCh) })
}

func (fw *FixedWindow) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ticker.C:
			fw.cleanup(time.Now())
		}
	}
}

// cleanup removes counters whose window closed long ago. When the map is
// still over capacity afterwards it drops the oldest windows first.
func (fw *FixedWindow) cleanup(now time.Time) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for key, c := range fw.counters {
		if now.Sub(c.windowStart) > counterTTL {
			delete(fw.counters, key)
		}
	}

	for len(fw.counters) > maxCounters {
		var oldestKey string
		var oldest time.Time
		for key, c := range fw.counters {
			if oldestKey == "" || c.windowStart.Before(oldest) {
				oldestKey = key
				oldest = c.windowStart
			}
		}
		delete(fw.counters, oldestKey)
	}
}
