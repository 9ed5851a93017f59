package behaviors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// LoggingBehavior logs the start and outcome of every dispatch.
// The logger is also placed into the context for handlers further down the chain.
type LoggingBehavior struct {
	logger *slog.Logger
}

// NewLoggingBehavior creates the behavior; a nil logger falls back to the context logger
func NewLoggingBehavior(logger *slog.Logger) *LoggingBehavior {
	return &LoggingBehavior{logger: logger}
}

// Name implements the mediator's behavior naming
func (b *LoggingBehavior) Name() string { return "logging" }

// Handle implements mediator.Behavior
func (b *LoggingBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	logger := b.logger
	if logger == nil {
		logger = common.LoggerFromContext(ctx)
	}
	if id := common.RequestIDFromContext(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	logger = logger.With(
		"request_type", fmt.Sprintf("%T", request),
		"kind", mediator.KindOf(request).String(),
	)
	ctx = common.WithLogger(ctx, logger)

	logger.DebugContext(ctx, "dispatching request")
	start := time.Now()

	response, err := next(ctx, request)

	duration := time.Since(start)
	if err != nil {
		logger.ErrorContext(ctx, "request failed",
			"duration", duration,
			"error_kind", mediator.ErrorKindOf(err).String(),
			"error", err,
		)
		return nil, err
	}

	logger.InfoContext(ctx, "request handled", "duration", duration)
	return response, nil
}
