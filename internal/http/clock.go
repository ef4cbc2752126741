package http

import (
	"context"
	"time"

	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
)

type systemClock struct{}

// SystemClock returns a ghapi.Clock backed by the wall clock.
func SystemClock() ghapi.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
