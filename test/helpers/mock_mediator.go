package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/hello"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// MockMediator is a test double for the Mediator interface.
// It records every request and the request id found in its context.
type MockMediator struct {
	mu         sync.Mutex
	sendFunc   func(ctx context.Context, request mediator.Request) (mediator.Response, error)
	callLog    []string // Track which requests were sent
	requestIDs []string
}

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{
		callLog: []string{},
	}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, fmt.Sprintf("%T", request))
	m.requestIDs = append(m.requestIDs, common.RequestIDFromContext(ctx))
	sendFunc := m.sendFunc
	m.mu.Unlock()

	// Use custom function if provided
	if sendFunc != nil {
		return sendFunc(ctx, request)
	}

	// Default behaviors based on request type
	switch req := request.(type) {
	case *hello.HelloRequest:
		return &hello.HelloReply{Message: "Hello " + req.Name}, nil

	default:
		return nil, fmt.Errorf("unsupported request type: %T", request)
	}
}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request mediator.Request) (mediator.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// GetCallLog returns the types of the requests that were sent
func (m *MockMediator) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.callLog...)
}

// GetRequestIDs returns the request id seen by each Send, in call order
func (m *MockMediator) GetRequestIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.requestIDs...)
}

// ClearCallLog clears the call log
func (m *MockMediator) ClearCallLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = []string{}
	m.requestIDs = nil
}

// Ensure MockMediator implements the mediator.Mediator interface
var _ mediator.Mediator = (*MockMediator)(nil)
