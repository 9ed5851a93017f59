package behaviors

import (
	"context"
	"fmt"
	"reflect"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// TracingBehavior wraps every dispatch in an opentracing span named Request(<Type>)
type TracingBehavior struct {
	tracer opentracing.Tracer
}

// NewTracingBehavior creates the behavior; a nil tracer uses the global tracer
func NewTracingBehavior(tracer opentracing.Tracer) *TracingBehavior {
	return &TracingBehavior{tracer: tracer}
}

// Name implements the mediator's behavior naming
func (b *TracingBehavior) Name() string { return "tracing" }

// Handle implements mediator.Behavior
func (b *TracingBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	tracer := b.tracer
	if tracer == nil {
		tracer = opentracing.GlobalTracer()
	}

	opts := []opentracing.StartSpanOption{
		opentracing.Tag{Key: "mediator.kind", Value: mediator.KindOf(request).String()},
	}
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	if id := common.RequestIDFromContext(ctx); id != "" {
		opts = append(opts, opentracing.Tag{Key: "request.id", Value: id})
	}

	span := tracer.StartSpan(SpanName(request), opts...)
	defer span.Finish()

	response, err := next(opentracing.ContextWithSpan(ctx, span), request)
	if err != nil {
		ext.LogError(span, err, log.String("error.kind", mediator.ErrorKindOf(err).String()))
	}
	return response, err
}

// SpanName returns the span operation name for a request
func SpanName(request mediator.Request) string {
	t := reflect.TypeOf(request)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Request(nil)"
	}
	return fmt.Sprintf("Request(%s)", t.Name())
}
