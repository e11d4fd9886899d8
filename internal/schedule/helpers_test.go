package schedule

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// fakeClock is a controllable time source so evaluation tests never wait on
// the real wall clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memSettings is an in-memory settings.Store with call counters and an
// optional injected write failure.
type memSettings struct {
	mu      sync.Mutex
	data    map[string]json.RawMessage
	gets    int
	puts    int
	failPut error
}

func newMemSettings() *memSettings {
	return &memSettings{data: map[string]json.RawMessage{}}
}

func (s *memSettings) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memSettings) Put(ctx context.Context, key string, value json.RawMessage) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failPut != nil {
		return s.failPut
	}
	cp := make(json.RawMessage, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *memSettings) Close() error { return nil }

type activation struct {
	modeID string
	manual bool
}

// fakeModes records activation requests and exposes a settable override flag.
type fakeModes struct {
	mu       sync.Mutex
	override bool
	calls    []activation
}

func (m *fakeModes) ManualOverride() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.override
}

func (m *fakeModes) setOverride(v bool) {
	m.mu.Lock()
	m.override = v
	m.mu.Unlock()
}

func (m *fakeModes) ActivateMode(modeID string, manual bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, activation{modeID: modeID, manual: manual})
	return true
}

func (m *fakeModes) activations() []activation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]activation(nil), m.calls...)
}
