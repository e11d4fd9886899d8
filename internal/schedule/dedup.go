package schedule

import (
	"sync"
	"time"
)

// Guard is a time-windowed idempotency cache keyed by the (weekday, HH:MM)
// dedup key. An entry expires a little over a minute after it was marked, so
// the next minute's tick is eligible to fire again without any timer-based
// cleanup.
type Guard struct {
	clock  Clock
	window time.Duration

	mu    sync.Mutex
	fired map[string]time.Time // key -> expiry
}

// DefaultDedupWindow is slightly longer than one minute so repeated passes
// within the same wall-clock minute always hit the guard.
const DefaultDedupWindow = 70 * time.Second

func NewGuard(window time.Duration, clock Clock) *Guard {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Guard{
		clock:  clock,
		window: window,
		fired:  map[string]time.Time{},
	}
}

// HasFired reports whether the key was marked within the dedup window.
func (g *Guard) HasFired(key string) bool {
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(now)
	_, ok := g.fired[key]
	return ok
}

// MarkFired records the key until the dedup window elapses.
func (g *Guard) MarkFired(key string) {
	if key == "" {
		return
	}
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(now)
	g.fired[key] = now.Add(g.window)
}

func (g *Guard) pruneLocked(now time.Time) {
	for k, until := range g.fired {
		if until.Before(now) {
			delete(g.fired, k)
		}
	}
}
