package contracts

import (
	"context"
	"time"
)

// Observer is notified once per use case execution, accepted or rejected.
type Observer interface {
	ObserveOperation(ctx context.Context, op string, err error, elapsed time.Duration)
}

// NopObserver discards observations.
type NopObserver struct{}

func (NopObserver) ObserveOperation(context.Context, string, error, time.Duration) {}
