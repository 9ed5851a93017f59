package mediator

import (
	"context"
	"fmt"
)

// TypedHandler handles one concrete request type
type TypedHandler[Req Request, Resp Response] interface {
	Handle(ctx context.Context, request Req) (Resp, error)
}

// NewHandler adapts a typed handler function to RequestHandler
func NewHandler[Req Request, Resp Response](fn func(ctx context.Context, request Req) (Resp, error)) RequestHandler {
	return HandlerFunc(func(ctx context.Context, request Request) (Response, error) {
		typed, ok := request.(Req)
		if !ok {
			return nil, fmt.Errorf("invalid request type: expected %T, got %T", *new(Req), request)
		}
		return fn(ctx, typed)
	})
}

// AdaptHandler adapts a TypedHandler to RequestHandler
func AdaptHandler[Req Request, Resp Response](handler TypedHandler[Req, Resp]) RequestHandler {
	return NewHandler(handler.Handle)
}
