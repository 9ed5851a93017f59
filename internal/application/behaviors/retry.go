package behaviors

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// RetryBehavior re-runs the rest of the chain when it fails with a temporary error.
// An error is temporary when something in its chain reports Temporary() == true.
// Commands are not retried unless includeCommands is set.
type RetryBehavior struct {
	maxAttempts     int
	min             time.Duration
	max             time.Duration
	includeCommands bool
}

// NewRetryBehavior creates the behavior
func NewRetryBehavior(maxAttempts int, min, max time.Duration, includeCommands bool) *RetryBehavior {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryBehavior{
		maxAttempts:     maxAttempts,
		min:             min,
		max:             max,
		includeCommands: includeCommands,
	}
}

// Name implements the mediator's behavior naming
func (b *RetryBehavior) Name() string { return "retry" }

// Handle implements mediator.Behavior
func (b *RetryBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	if mediator.IsCommand(request) && !b.includeCommands {
		return next(ctx, request)
	}

	bo := &backoff.Backoff{Min: b.min, Max: b.max, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		response, err := next(ctx, request)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !IsTemporary(err) || attempt == b.maxAttempts {
			break
		}

		delay := bo.Duration()
		common.LoggerFromContext(ctx).WarnContext(ctx, "retrying request",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// IsTemporary reports whether err, or any error it wraps, is marked temporary
func IsTemporary(err error) bool {
	var temporary interface{ Temporary() bool }
	return errors.As(err, &temporary) && temporary.Temporary()
}
