package behaviors

import (
	"context"

	"github.com/google/uuid"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// RequestIDBehavior assigns a request id to every dispatch that arrives without one
// and tags the context logger with it.
type RequestIDBehavior struct {
	generate func() string
}

// NewRequestIDBehavior creates the behavior with uuid request ids
func NewRequestIDBehavior() *RequestIDBehavior {
	return &RequestIDBehavior{generate: func() string { return uuid.New().String() }}
}

// Name implements the mediator's behavior naming
func (b *RequestIDBehavior) Name() string { return "request_id" }

// Handle implements mediator.Behavior
func (b *RequestIDBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	id := common.RequestIDFromContext(ctx)
	if id == "" {
		id = b.generate()
		ctx = common.WithRequestID(ctx, id)
	}

	ctx = common.WithLogger(ctx, common.LoggerFromContext(ctx).With("request_id", id))
	return next(ctx, request)
}
