// Package ratelimit implements the per-user command cooldown.
package ratelimit

import (
	"sync"
	"time"

	"discordllm/internal/core"
)

// Limiter tracks the last accepted request per user and rejects requests
// arriving within the cooldown window. The bucket is shared across every
// command and mention, keyed by user ID only.
type Limiter struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	cooldown time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a cooldown limiter and starts its eviction goroutine.
func NewLimiter(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = core.DefaultCooldown
	}
	l := &Limiter{
		lastSeen: make(map[string]time.Time),
		cooldown: cooldown,
		done:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow checks and records in one step: when the user's previous request is
// within the cooldown it rejects without touching the stored timestamp and
// returns the remaining wait; otherwise it records now and accepts.
func (l *Limiter) Allow(userID string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, exists := l.lastSeen[userID]; exists {
		elapsed := now.Sub(last)
		if elapsed < l.cooldown {
			return false, l.cooldown - elapsed
		}
	}

	l.lastSeen[userID] = now
	return true, 0
}

// Cooldown returns the configured cooldown window.
func (l *Limiter) Cooldown() time.Duration {
	return l.cooldown
}

// Stop terminates the eviction goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(core.CooldownCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictStale(time.Now())
		case <-l.done:
			return
		}
	}
}

// evictStale drops entries older than the cooldown window; they can no
// longer influence an Allow decision.
func (l *Limiter) evictStale(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for userID, last := range l.lastSeen {
		if now.Sub(last) >= l.cooldown {
			delete(l.lastSeen, userID)
		}
	}
}
