package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/queries"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
)

// RecordGreetingCommand stores a greeting for Name.
// An empty Message records the canonical "Hello <Name>" text.
type RecordGreetingCommand struct {
	mediator.Command[*RecordGreetingResponse]
	Name    string `validate:"required,max=64"`
	Message string `validate:"max=512"`
}

// InvalidatedQueries marks cached greeting listings stale once a greeting is recorded
func (c *RecordGreetingCommand) InvalidatedQueries() []mediator.Request {
	return []mediator.Request{&queries.ListGreetingsQuery{}}
}

// RecordGreetingResponse contains the stored greeting
type RecordGreetingResponse struct {
	ID        string
	Name      string
	Message   string
	CreatedAt time.Time
}

// RecordGreetingHandler - Handles record greeting commands
type RecordGreetingHandler struct {
	greetingRepo greeting.GreetingRepository
	clock        shared.Clock
}

// NewRecordGreetingHandler creates a new record greeting handler
func NewRecordGreetingHandler(greetingRepo greeting.GreetingRepository, clock shared.Clock) *RecordGreetingHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RecordGreetingHandler{
		greetingRepo: greetingRepo,
		clock:        clock,
	}
}

// Handle executes the record greeting command
func (h *RecordGreetingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RecordGreetingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordGreetingCommand")
	}

	g, err := greeting.NewGreeting(cmd.Name, cmd.Message, h.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := h.greetingRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to record greeting: %w", err)
	}

	return &RecordGreetingResponse{
		ID:        g.ID().String(),
		Name:      g.Name(),
		Message:   g.Message(),
		CreatedAt: g.CreatedAt(),
	}, nil
}
