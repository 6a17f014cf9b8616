package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_NeverGoesBackwards(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	src := NewMockClock(start)
	m := NewMonotonic(src)

	assert.Equal(t, start, m.Now())

	src.Set(start.Add(-time.Minute))
	assert.Equal(t, start, m.Now())

	src.Advance(2 * time.Minute)
	assert.Equal(t, start.Add(time.Minute), m.Now())
}

func TestMonotonic_Observe(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonotonic(NewMockClock(start))

	m.Observe(start.Add(time.Hour))
	assert.Equal(t, start.Add(time.Hour), m.Now())

	// An older observation does not lower the floor.
	m.Observe(start)
	assert.Equal(t, start.Add(time.Hour), m.Now())
}

func TestRealClock_IsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewRealClock().Now().Location())
}
