package tripgo

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound TripGo requests. The API key is shared by every
// tool, so one limiter covers all endpoints.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimiter allows rps requests per second with the given burst.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		rl.logger.Debug("rate limiter wait error", "endpoint", endpoint, "error", err)
		return err
	}
	return nil
}
