package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/commands"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
	"github.com/andrescamacho/grpc-mediator-go/test/helpers"
)

func TestRecordGreetingHandler_StoresGreeting(t *testing.T) {
	// Arrange
	repo := helpers.NewMockGreetingRepository()
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC))
	handler := commands.NewRecordGreetingHandler(repo, clock)

	// Act
	response, err := handler.Handle(context.Background(), &commands.RecordGreetingCommand{Name: "Tester"})

	// Assert
	require.NoError(t, err)
	result := response.(*commands.RecordGreetingResponse)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "Hello Tester", result.Message)
	assert.Equal(t, clock.Now(), result.CreatedAt)
	assert.Equal(t, 1, repo.Count())
}

func TestRecordGreetingHandler_InvalidName(t *testing.T) {
	repo := helpers.NewMockGreetingRepository()
	handler := commands.NewRecordGreetingHandler(repo, nil)

	_, err := handler.Handle(context.Background(), &commands.RecordGreetingCommand{Name: "   "})

	var invalid *greeting.ErrInvalidGreeting
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, repo.Count())
}

func TestRecordGreetingHandler_RepositoryFailure(t *testing.T) {
	repo := helpers.NewMockGreetingRepository()
	repo.SetCreateError(errors.New("disk full"))
	handler := commands.NewRecordGreetingHandler(repo, nil)

	_, err := handler.Handle(context.Background(), &commands.RecordGreetingCommand{Name: "Tester"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record greeting")
}

func TestRecordGreetingCommand_IsCommand(t *testing.T) {
	assert.Equal(t, mediator.KindCommand, mediator.KindOf(&commands.RecordGreetingCommand{}))
}
