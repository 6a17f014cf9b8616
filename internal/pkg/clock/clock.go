package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations to enable testability.
type Clock interface {
	Now() time.Time
}

// RealClock is the production implementation using actual system time.
type RealClock struct{}

// NewRealClock creates a new RealClock.
func NewRealClock() Clock {
	return &RealClock{}
}

// Now returns the current system time in UTC.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock is a test implementation that allows setting the current time.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMockClock creates a new MockClock starting at the given time.
func NewMockClock(startTime time.Time) *MockClock {
	return &MockClock{current: startTime}
}

// Now returns the mock current time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set sets the mock current time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance advances the mock clock by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Monotonic wraps a Clock so that successive readings never go backwards.
// A reading earlier than the previous one is clamped to the previous one.
type Monotonic struct {
	mu   sync.Mutex
	src  Clock
	last time.Time
}

// NewMonotonic creates a Monotonic clock over src.
func NewMonotonic(src Clock) *Monotonic {
	return &Monotonic{src: src}
}

// Now returns a time that is not before any previously returned time.
func (m *Monotonic) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.src.Now()
	if now.Before(m.last) {
		return m.last
	}
	m.last = now
	return now
}

// Observe raises the floor of the clock to t, e.g. after loading the latest committed timestamp.
func (m *Monotonic) Observe(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.After(m.last) {
		m.last = t
	}
}
