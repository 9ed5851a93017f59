package mediator

import (
	"context"
)

// Request represents a command, a query or a plain request
type Request interface{}

// Response represents the result of handling a request
type Response interface{}

// RequestHandler handles a specific request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is a function that handles a request.
// It is also the continuation handed to every behavior: calling it runs the rest of the chain.
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Handle implements RequestHandler
func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Behavior wraps the dispatch of a request with cross-cutting logic.
//
// A behavior may call next zero times (short-circuit), once (normal wrapping) or
// return a failure of its own. The context passed to next may be derived from ctx
// (transactions, request ids, spans); the request passed to next must keep its
// concrete type.
type Behavior interface {
	Handle(ctx context.Context, request Request, next HandlerFunc) (Response, error)
}

// Middleware is a function that wraps handler execution with cross-cutting concerns
// Examples: authentication, logging, telemetry, circuit breakers, retries
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Handle implements Behavior
func (m Middleware) Handle(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
	return m(ctx, request, next)
}

// Mediator dispatches requests to their handlers through the behavior chain
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
}
