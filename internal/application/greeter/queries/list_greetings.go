package queries

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
)

// ListGreetingsQuery lists recorded greetings, newest first
type ListGreetingsQuery struct {
	mediator.Query[*ListGreetingsResponse]
	Name  string `validate:"max=64"`
	Limit int    `validate:"min=0,max=500"`
}

// CacheKey identifies the query's result in the response cache
func (q *ListGreetingsQuery) CacheKey() string {
	return q.Name + "|" + strconv.Itoa(q.Limit)
}

// GreetingDTO is a greeting as returned by queries
type GreetingDTO struct {
	ID        string
	Name      string
	Message   string
	CreatedAt time.Time
}

// ListGreetingsResponse contains the matching greetings
type ListGreetingsResponse struct {
	Greetings []GreetingDTO
	Count     int
}

// ListGreetingsHandler - Handles list greetings queries
type ListGreetingsHandler struct {
	greetingRepo greeting.GreetingRepository
}

// NewListGreetingsHandler creates a new list greetings handler
func NewListGreetingsHandler(greetingRepo greeting.GreetingRepository) *ListGreetingsHandler {
	return &ListGreetingsHandler{greetingRepo: greetingRepo}
}

// Handle executes the list greetings query
func (h *ListGreetingsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListGreetingsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListGreetingsQuery")
	}

	greetings, err := h.greetingRepo.List(ctx, greeting.ListOptions{
		Name:  query.Name,
		Limit: query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list greetings: %w", err)
	}

	dtos := make([]GreetingDTO, len(greetings))
	for i, g := range greetings {
		dtos[i] = GreetingDTO{
			ID:        g.ID().String(),
			Name:      g.Name(),
			Message:   g.Message(),
			CreatedAt: g.CreatedAt(),
		}
	}

	return &ListGreetingsResponse{
		Greetings: dtos,
		Count:     len(dtos),
	}, nil
}
