package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/queries"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
	"github.com/andrescamacho/grpc-mediator-go/test/helpers"
)

func TestListGreetingsHandler_FiltersByName(t *testing.T) {
	// Arrange
	repo := helpers.NewMockGreetingRepository()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"Ada", "Bob", "Ada"} {
		g, err := greeting.NewGreeting(name, "", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), g))
	}
	handler := queries.NewListGreetingsHandler(repo)

	// Act
	response, err := handler.Handle(context.Background(), &queries.ListGreetingsQuery{Name: "Ada"})

	// Assert
	require.NoError(t, err)
	result := response.(*queries.ListGreetingsResponse)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Greetings, 2)
	assert.True(t, result.Greetings[0].CreatedAt.After(result.Greetings[1].CreatedAt))
	assert.Equal(t, "Hello Ada", result.Greetings[0].Message)
}

func TestListGreetingsQuery_IsCacheableQuery(t *testing.T) {
	q := &queries.ListGreetingsQuery{Name: "Ada", Limit: 5}

	assert.Equal(t, mediator.KindQuery, mediator.KindOf(q))
	assert.Equal(t, "Ada|5", q.CacheKey())
}
