package signal

import (
	"sync"
	"time"

	"github.com/soulmegle/sessiond/internal/core"
)

// PairRateLimiter bounds how often one connection may trigger the matcher,
// which is the only expensive external call in the system. Sliding window per
// connection identity.
type PairRateLimiter struct {
	mu       sync.Mutex
	history  map[core.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func NewPairRateLimiter(limit int, interval time.Duration) *PairRateLimiter {
	return &PairRateLimiter{
		history:  make(map[core.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *PairRateLimiter) Allow(sid core.ConnID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]

	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[sid] = fresh

	return true
}

// Forget drops a connection's history once the transport is gone.
func (rl *PairRateLimiter) Forget(sid core.ConnID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, sid)
}
