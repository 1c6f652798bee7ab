package common

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle is a token bucket shared by every call site of one rate-limited API
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows perSecond calls per second with the given burst
func NewThrottle(perSecond float64, burst int) *Throttle {
	if burst < 1 {
		burst = 1
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a call is allowed or ctx is done
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Allow reports whether a call may happen now, consuming a token if so
func (t *Throttle) Allow() bool {
	return t.limiter.Allow()
}
