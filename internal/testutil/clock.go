package testutil

import (
	"time"

	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
)

// Epoch is the start time of every test clock.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// NewMockClock creates a mock clock starting at Epoch.
func NewMockClock() *clock.MockClock {
	return clock.NewMockClock(Epoch)
}
