// Package limiter enforces per-client sliding-window rate limits.
package limiter

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// window holds the recent request timestamps for one client key.
type window struct {
	stamps []time.Time
}

// Limiter tracks request timestamps per client key over a sliding window.
// Client entries live in a bounded expirable LRU, so idle clients are
// evicted instead of accumulating forever. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	clients *expirable.LRU[string, *window]
	period  time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Limiter that remembers at most maxClients keys, dropping
// entries untouched for ttl. The quota window is one minute.
func New(maxClients int, ttl time.Duration) *Limiter {
	return &Limiter{
		clients: expirable.NewLRU[string, *window](maxClients, nil, ttl),
		period:  time.Minute,
		now:     time.Now,
	}
}

// Allow records a request for the client key and reports whether it stays
// within perMinute. Timestamps older than the window are pruned on every
// call. perMinute <= 0 disables limiting for the key.
func (l *Limiter) Allow(clientKey string, perMinute int) bool {
	if perMinute <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients.Get(clientKey)
	if !ok {
		w = &window{}
		l.clients.Add(clientKey, w)
	}

	cutoff := l.now().Add(-l.period)
	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= perMinute {
		return false
	}
	w.stamps = append(w.stamps, l.now())
	return true
}

// Tracked returns the number of client keys currently held.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clients.Len()
}
