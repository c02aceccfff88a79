package server

import (
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter guards how fast one connection may emit events. Burst tokens
// are available up front and the bucket refills completely once per
// RefillInterval.
type rateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	burst, interval := cfg.Burst, cfg.RefillInterval
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(burst)), burst),
		now:     time.Now,
	}
}

func (rl *rateLimiter) allow() bool {
	return rl.limiter.AllowN(rl.now(), 1)
}
