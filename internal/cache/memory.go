package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     string
	counter   int64
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Memory is an in-process Cache implementation backed by a mutex-guarded
// map. Expired entries are dropped lazily on access and swept whenever the
// map grows past a threshold.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry

	// now is swappable for tests.
	now func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get returns the value stored under key, or ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	if e.value == "" && e.counter != 0 {
		return strconv.FormatInt(e.counter, 10), nil
	}
	return e.value, nil
}

// SetWithTTL stores value under key with the given expiry.
func (m *Memory) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	m.entries[key] = &entry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Increment bumps the counter under key, creating it with ttl if absent or
// expired. The expiry of an existing counter is left untouched.
func (m *Memory) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		m.sweepLocked()
		e = &entry{counter: 1, expiresAt: now.Add(ttl)}
		m.entries[key] = e
		return 1, nil
	}

	e.counter++
	return e.counter, nil
}

// sweepLocked drops expired entries once the map gets large. Callers must
// hold mu.
func (m *Memory) sweepLocked() {
	if len(m.entries) < 4096 {
		return
	}
	now := m.now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}
