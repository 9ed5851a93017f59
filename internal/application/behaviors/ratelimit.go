package behaviors

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// RateLimitBehavior admits dispatches through a token bucket shared by all requests.
// In wait mode it blocks until a token is available or the context ends; otherwise it
// fails fast with a RateLimitedError.
type RateLimitBehavior struct {
	limiter *rate.Limiter
	wait    bool
}

// NewRateLimitBehavior creates the behavior with requestsPerSecond and burst
func NewRateLimitBehavior(requestsPerSecond float64, burst int, wait bool) *RateLimitBehavior {
	return &RateLimitBehavior{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		wait:    wait,
	}
}

// Name implements the mediator's behavior naming
func (b *RateLimitBehavior) Name() string { return "rate_limit" }

// Handle implements mediator.Behavior
func (b *RateLimitBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	if b.wait {
		if err := b.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &RateLimitedError{RetryAfter: b.retryAfter()}
		}
		return next(ctx, request)
	}

	if !b.limiter.Allow() {
		return nil, &RateLimitedError{RetryAfter: b.retryAfter()}
	}
	return next(ctx, request)
}

// retryAfter reports how long until the next token without consuming it
func (b *RateLimitBehavior) retryAfter() time.Duration {
	reservation := b.limiter.Reserve()
	defer reservation.Cancel()
	return reservation.Delay()
}
