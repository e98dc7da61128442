package stubapi

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window counter. The backup endpoint allows a
// handful of downloads per hour; anything beyond that answers 429.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   []time.Time
	now    func() time.Time // test seam
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, now: time.Now}
}

// Allow records an attempt and reports whether it falls within the limit.
func (r *rateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	kept := r.hits[:0]
	for _, h := range r.hits {
		if h.After(cutoff) {
			kept = append(kept, h)
		}
	}
	r.hits = kept

	if len(r.hits) >= r.limit {
		return false
	}
	r.hits = append(r.hits, now)
	return true
}
