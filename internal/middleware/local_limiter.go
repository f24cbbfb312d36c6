package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiterStore keeps one token bucket per key in process memory.
// It serves as the rate limiter when Redis is unavailable.  Idle keys
// are evicted by the janitor started with StartJanitor.
type LocalLimiterStore struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiterStore returns a store handing out limiters refilling at
// rps tokens per second with the given burst.  Keys unused for idleTTL
// are dropped on the next cleanup.
func NewLocalLimiterStore(rps float64, burst int, idleTTL time.Duration) *LocalLimiterStore {
	cleanupEvery := idleTTL / 5
	if cleanupEvery <= 0 {
		cleanupEvery = time.Minute
	}
	return &LocalLimiterStore{
		entries:      make(map[string]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      idleTTL,
		cleanupEvery: cleanupEvery,
	}
}

// Get returns the limiter of key, creating it on first use.
func (s *LocalLimiterStore) Get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

// Len is the number of tracked keys.
func (s *LocalLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops keys idle for longer than the idle TTL.
func (s *LocalLimiterStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is cancelled.
func (s *LocalLimiterStore) StartJanitor(ctx context.Context) {
	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
