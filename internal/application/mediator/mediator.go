package mediator

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
)

// Dispatcher is the Mediator implementation produced by Builder.Build.
// It holds no per-dispatch state; every Send composes a fresh chain.
type Dispatcher struct {
	registry  *Registry
	behaviors []behaviorEntry
	pipelines map[reflect.Type][]behaviorEntry
}

var _ Mediator = (*Dispatcher)(nil)

// Send dispatches a request through the applicable behaviors to its registered handler
func (d *Dispatcher) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, ErrNilRequest
	}

	requestType := reflect.TypeOf(request)

	// Resolution failures return before any behavior runs
	handler, err := d.registry.Resolve(requestType)
	if err != nil {
		return nil, err
	}

	chain := d.pipeline(requestType)

	next := terminal(requestType, handler)
	for i := len(chain) - 1; i >= 0; i-- {
		next = wrap(chain[i], requestType, next)
	}

	return next(ctx, request)
}

// Describe returns the names of the behaviors wrapping requestType, outermost first
func (d *Dispatcher) Describe(requestType reflect.Type) []string {
	chain := d.pipeline(requestType)
	names := make([]string, len(chain))
	for i, entry := range chain {
		names[i] = entry.name
	}
	return names
}

// RequestTypes returns the request types the dispatcher can route
func (d *Dispatcher) RequestTypes() []reflect.Type {
	return d.registry.RequestTypes()
}

func (d *Dispatcher) pipeline(requestType reflect.Type) []behaviorEntry {
	if chain, ok := d.pipelines[requestType]; ok {
		return chain
	}
	return selectBehaviors(d.behaviors, requestType)
}

// terminal invokes the handler and classifies its failure
func terminal(requestType reflect.Type, handler RequestHandler) HandlerFunc {
	return func(ctx context.Context, request Request) (response Response, err error) {
		if err := ctx.Err(); err != nil {
			return nil, &CancellationError{RequestType: requestType, Err: err}
		}

		defer func() {
			if r := recover(); r != nil {
				response = nil
				err = &HandlerError{RequestType: requestType, Err: &PanicError{Value: r, Stack: debug.Stack()}}
			}
		}()

		response, err = handler.Handle(ctx, request)
		if err != nil {
			if isContextError(err) {
				return nil, &CancellationError{RequestType: requestType, Err: err}
			}
			return nil, &HandlerError{RequestType: requestType, Err: err}
		}

		if declared, ok := ResponseTypeOf(request); ok && response != nil {
			if actual := reflect.TypeOf(response); !actual.AssignableTo(declared) {
				return nil, &HandlerError{
					RequestType: requestType,
					Err:         fmt.Errorf("%w: got %s, want %s", ErrUnexpectedResponse, actual, declared),
				}
			}
		}

		return response, nil
	}
}

// wrap runs one behavior around next.
// Failures raised by the behavior itself, panics included, become BehaviorError;
// failures coming out of next are already classified and pass through unchanged.
func wrap(entry behaviorEntry, requestType reflect.Type, next HandlerFunc) HandlerFunc {
	guarded := func(ctx context.Context, request Request) (Response, error) {
		if request == nil || reflect.TypeOf(request) != requestType {
			return nil, fmt.Errorf("%w: %s became %T", ErrRequestTypeChanged, requestType, request)
		}
		return next(ctx, request)
	}

	return func(ctx context.Context, request Request) (response Response, err error) {
		if err := ctx.Err(); err != nil {
			return nil, &CancellationError{RequestType: requestType, Err: err}
		}

		defer func() {
			if r := recover(); r != nil {
				response = nil
				err = &BehaviorError{
					RequestType: requestType,
					Behavior:    entry.name,
					Err:         &PanicError{Value: r, Stack: debug.Stack()},
				}
			}
		}()

		response, err = entry.behavior.Handle(ctx, request, guarded)
		if err != nil {
			switch {
			case isDispatchError(err):
				return nil, err
			case isContextError(err):
				return nil, &CancellationError{RequestType: requestType, Err: err}
			default:
				return nil, &BehaviorError{RequestType: requestType, Behavior: entry.name, Err: err}
			}
		}

		return response, nil
	}
}

// Send dispatches a typed request and returns its typed response.
// The compiler rejects requests that do not declare R as their response type.
//
//	reply, err := mediator.Send[*hello.HelloReply](ctx, m, &hello.HelloRequest{Name: "Tester"})
func Send[R any](ctx context.Context, m Mediator, request TypedRequest[R]) (R, error) {
	var zero R

	response, err := m.Send(ctx, request)
	if err != nil {
		return zero, err
	}

	if response == nil {
		return zero, nil
	}

	typed, ok := response.(R)
	if !ok {
		return zero, &HandlerError{
			RequestType: reflect.TypeOf(request),
			Err:         fmt.Errorf("%w: got %T, want %s", ErrUnexpectedResponse, response, reflect.TypeFor[R]()),
		}
	}
	return typed, nil
}
