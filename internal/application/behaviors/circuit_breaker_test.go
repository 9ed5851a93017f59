package behaviors_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/behaviors"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
)

var recordType = reflect.TypeOf(&recordCommand{})

// flakyHandler fails while failing is set and counts its calls
type flakyHandler struct {
	failing bool
	calls   int
}

func (h *flakyHandler) register(b *mediator.Builder) error {
	if err := mediator.Handle[*helloRequest](b, helloHandler(nil)); err != nil {
		return err
	}
	return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
		h.calls++
		if h.failing {
			return nil, errors.New("database unavailable")
		}
		return &helloReply{Message: "ok"}, nil
	}))
}

func newBreakerFixture(t *testing.T) (*flakyHandler, *behaviors.CircuitBreakerBehavior, *shared.MockClock, *mediator.Dispatcher) {
	t.Helper()

	handler := &flakyHandler{failing: true}
	clock := shared.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	breaker := behaviors.NewCircuitBreakerBehavior(3, 30*time.Second, clock)
	m, err := buildMediator(handler.register, breaker)
	require.NoError(t, err)

	return handler, breaker, clock, m
}

func TestCircuitBreakerBehavior_OpensAfterMaxFailures(t *testing.T) {
	// Arrange
	handler, breaker, _, m := newBreakerFixture(t)
	ctx := context.Background()

	// Act
	for i := 0; i < 3; i++ {
		_, err := m.Send(ctx, &recordCommand{})
		require.Equal(t, mediator.ErrorKindHandlerFailure, mediator.ErrorKindOf(err))
	}
	_, err := m.Send(ctx, &recordCommand{})

	// Assert
	assert.Equal(t, behaviors.CircuitOpen, breaker.State(recordType))
	assert.ErrorIs(t, err, behaviors.ErrCircuitOpen)
	assert.Equal(t, mediator.ErrorKindBehaviorFailure, mediator.ErrorKindOf(err))
	var openErr *behaviors.CircuitOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, 30*time.Second, openErr.RetryAfter)
	assert.Equal(t, 3, handler.calls)
}

func TestCircuitBreakerBehavior_OtherRequestTypesKeepFlowing(t *testing.T) {
	// Arrange
	_, breaker, _, m := newBreakerFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = m.Send(ctx, &recordCommand{})
	}

	// Act
	reply, err := mediator.Send[*helloReply](ctx, m, &helloRequest{Name: "Ada"})

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, reply)
	assert.Equal(t, behaviors.CircuitClosed, breaker.State(reflect.TypeOf(&helloRequest{})))
}

func TestCircuitBreakerBehavior_HalfOpenTrialSuccessCloses(t *testing.T) {
	// Arrange
	handler, breaker, clock, m := newBreakerFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = m.Send(ctx, &recordCommand{})
	}
	handler.failing = false

	// Act
	clock.Advance(29 * time.Second)
	_, stillOpen := m.Send(ctx, &recordCommand{})
	clock.Advance(time.Second)
	_, trial := m.Send(ctx, &recordCommand{})

	// Assert
	assert.ErrorIs(t, stillOpen, behaviors.ErrCircuitOpen)
	require.NoError(t, trial)
	assert.Equal(t, behaviors.CircuitClosed, breaker.State(recordType))
	assert.Equal(t, 0, breaker.FailureCount(recordType))
	assert.Equal(t, 4, handler.calls)
}

func TestCircuitBreakerBehavior_HalfOpenTrialFailureReopens(t *testing.T) {
	// Arrange
	handler, breaker, clock, m := newBreakerFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = m.Send(ctx, &recordCommand{})
	}
	clock.Advance(30 * time.Second)

	// Act
	_, trial := m.Send(ctx, &recordCommand{})
	_, afterTrial := m.Send(ctx, &recordCommand{})

	// Assert
	assert.Equal(t, mediator.ErrorKindHandlerFailure, mediator.ErrorKindOf(trial))
	assert.ErrorIs(t, afterTrial, behaviors.ErrCircuitOpen)
	assert.Equal(t, behaviors.CircuitOpen, breaker.State(recordType))
	assert.Equal(t, 4, handler.calls)
}

func TestCircuitBreakerBehavior_IgnoresCancellation(t *testing.T) {
	// Arrange
	handler, breaker, _, m := newBreakerFixture(t)
	handler.failing = false
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	for i := 0; i < 5; i++ {
		_, err := m.Send(ctx, &recordCommand{})
		require.ErrorIs(t, err, mediator.ErrCancellationRequested)
	}

	// Assert
	assert.Equal(t, behaviors.CircuitClosed, breaker.State(recordType))
	assert.Equal(t, 0, breaker.FailureCount(recordType))
}

func TestCircuitBreakerBehavior_SuccessResetsFailureCount(t *testing.T) {
	// Arrange
	handler, breaker, _, m := newBreakerFixture(t)
	ctx := context.Background()
	_, _ = m.Send(ctx, &recordCommand{})
	_, _ = m.Send(ctx, &recordCommand{})

	// Act
	handler.failing = false
	_, err := m.Send(ctx, &recordCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, breaker.FailureCount(recordType))
	assert.Equal(t, behaviors.CircuitClosed, breaker.State(recordType))
}

func TestCircuitBreakerBehavior_Reset(t *testing.T) {
	// Arrange
	_, breaker, _, m := newBreakerFixture(t)
	for i := 0; i < 3; i++ {
		_, _ = m.Send(context.Background(), &recordCommand{})
	}

	// Act
	breaker.Reset()

	// Assert
	assert.Equal(t, behaviors.CircuitClosed, breaker.State(recordType))
	assert.Equal(t, "open", behaviors.CircuitOpen.String())
}
