package hello

import (
	"context"
	"fmt"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
)

// HelloRequest asks for a greeting for Name. It is neither a command nor a query.
type HelloRequest struct {
	mediator.Returns[*HelloReply]
	Name string `validate:"required,max=64"`
}

// HelloReply carries the composed greeting
type HelloReply struct {
	Message string
}

// HelloHandler - Handles hello requests
type HelloHandler struct{}

// NewHelloHandler creates a new hello handler
func NewHelloHandler() *HelloHandler {
	return &HelloHandler{}
}

// Handle executes the hello request
func (h *HelloHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	req, ok := request.(*HelloRequest)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *HelloRequest")
	}

	common.LoggerFromContext(ctx).DebugContext(ctx, "composing greeting", "name", req.Name)

	return &HelloReply{Message: greeting.Compose(req.Name)}, nil
}
