package behaviors

import (
	"context"
	"fmt"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
)

// AuditBehavior records the outcome of every command through an AuditSink.
// Sink failures are logged and never change the dispatch result.
type AuditBehavior struct {
	sink  common.AuditSink
	clock shared.Clock
}

// NewAuditBehavior creates the behavior
func NewAuditBehavior(sink common.AuditSink, clock shared.Clock) *AuditBehavior {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &AuditBehavior{sink: sink, clock: clock}
}

// Name implements the mediator's behavior naming
func (b *AuditBehavior) Name() string { return "audit" }

// Handle implements mediator.Behavior
func (b *AuditBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	if !mediator.IsCommand(request) {
		return next(ctx, request)
	}

	start := b.clock.Now()
	response, err := next(ctx, request)

	entry := common.AuditEntry{
		RequestID:   common.RequestIDFromContext(ctx),
		RequestType: fmt.Sprintf("%T", request),
		Kind:        mediator.KindOf(request).String(),
		Succeeded:   err == nil,
		Duration:    b.clock.Now().Sub(start),
		Timestamp:   start,
	}
	if err != nil {
		entry.ErrorKind = mediator.ErrorKindOf(err).String()
		entry.Error = err.Error()
	}

	// The dispatch context may already be cancelled; the audit write must still land
	if recordErr := b.sink.Record(context.WithoutCancel(ctx), entry); recordErr != nil {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "failed to record audit entry", "error", recordErr)
	}

	return response, err
}
