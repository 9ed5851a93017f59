package behaviors

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// RecoveryBehavior logs panics recovered further down the chain with their stack.
// The mediator already turns a handler panic into a HandlerError and a behavior
// panic into a BehaviorError; this behavior leaves that classification untouched.
type RecoveryBehavior struct{}

// NewRecoveryBehavior creates the behavior
func NewRecoveryBehavior() *RecoveryBehavior {
	return &RecoveryBehavior{}
}

// Name implements the mediator's behavior naming
func (b *RecoveryBehavior) Name() string { return "recovery" }

// Handle implements mediator.Behavior
func (b *RecoveryBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	response, err := next(ctx, request)

	var panicErr *mediator.PanicError
	if errors.As(err, &panicErr) {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "recovered panic",
			"request_type", fmt.Sprintf("%T", request),
			"error_kind", mediator.ErrorKindOf(err).String(),
			"panic", fmt.Sprint(panicErr.Value),
			"stack", string(panicErr.Stack),
		)
	}

	return response, err
}
