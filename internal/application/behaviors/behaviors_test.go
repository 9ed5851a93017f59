package behaviors_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/behaviors"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
)

func TestRequestIDBehavior_AssignsIDOnce(t *testing.T) {
	// Arrange
	var seen string
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*helloRequest](b, mediator.NewHandler(func(ctx context.Context, r *helloRequest) (*helloReply, error) {
			seen = common.RequestIDFromContext(ctx)
			return &helloReply{}, nil
		}))
	}, behaviors.NewRequestIDBehavior())
	require.NoError(t, err)

	// Act
	_, err = m.Send(context.Background(), &helloRequest{Name: "a"})
	require.NoError(t, err)
	generated := seen
	_, err = m.Send(common.WithRequestID(context.Background(), "given-id"), &helloRequest{Name: "a"})
	require.NoError(t, err)

	// Assert
	assert.Len(t, generated, 36)
	assert.Equal(t, "given-id", seen)
}

func TestLoggingBehavior_LogsOutcome(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, err := buildMediator(func(b *mediator.Builder) error {
		if err := mediator.Handle[*helloRequest](b, helloHandler(nil)); err != nil {
			return err
		}
		return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
			return nil, errors.New("disk full")
		}))
	}, behaviors.NewLoggingBehavior(logger))
	require.NoError(t, err)

	// Act
	_, err = m.Send(context.Background(), &helloRequest{Name: "Tester"})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &recordCommand{})
	require.Error(t, err)

	// Assert
	out := buf.String()
	assert.Contains(t, out, "msg=\"request handled\"")
	assert.Contains(t, out, "msg=\"request failed\"")
	assert.Contains(t, out, "error_kind=HANDLER_FAILURE")
	assert.Contains(t, out, "kind=command")
}

func TestTracingBehavior_RecordsSpan(t *testing.T) {
	// Arrange
	tracer := mocktracer.New()
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
			return nil, errors.New("rejected")
		}))
	}, behaviors.NewTracingBehavior(tracer))
	require.NoError(t, err)

	// Act
	_, err = m.Send(context.Background(), &recordCommand{})
	require.Error(t, err)

	// Assert
	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "Request(recordCommand)", spans[0].OperationName)
	assert.Equal(t, "command", spans[0].Tag("mediator.kind"))
	assert.Equal(t, true, spans[0].Tag(string(ext.Error)))
}

func TestValidationBehavior_RejectsInvalidRequest(t *testing.T) {
	// Arrange
	called := false
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*helloRequest](b, mediator.NewHandler(func(ctx context.Context, r *helloRequest) (*helloReply, error) {
			called = true
			return &helloReply{}, nil
		}))
	}, behaviors.NewValidationBehavior(nil))
	require.NoError(t, err)

	// Act
	_, err = m.Send(context.Background(), &helloRequest{Name: ""})

	// Assert
	var validationErr *behaviors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "Name", validationErr.Fields[0].Field)
	assert.Equal(t, "required", validationErr.Fields[0].Rule)
	assert.Equal(t, mediator.ErrorKindBehaviorFailure, mediator.ErrorKindOf(err))
	assert.False(t, called)
}

func TestValidationBehavior_PassesValidRequest(t *testing.T) {
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*helloRequest](b, helloHandler(nil))
	}, behaviors.NewValidationBehavior(nil))
	require.NoError(t, err)

	reply, err := mediator.Send[*helloReply](context.Background(), m, &helloRequest{Name: "Tester"})

	require.NoError(t, err)
	assert.Equal(t, "Hello Tester", reply.Message)
}

func TestRateLimitBehavior_FailsFastWhenExhausted(t *testing.T) {
	// Arrange
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*helloRequest](b, helloHandler(nil))
	}, behaviors.NewRateLimitBehavior(0.001, 1, false))
	require.NoError(t, err)

	// Act
	_, first := m.Send(context.Background(), &helloRequest{Name: "a"})
	_, second := m.Send(context.Background(), &helloRequest{Name: "a"})

	// Assert
	require.NoError(t, first)
	var limited *behaviors.RateLimitedError
	require.ErrorAs(t, second, &limited)
	assert.Greater(t, limited.RetryAfter, time.Duration(0))
	assert.True(t, behaviors.IsTemporary(second))
}

func TestRateLimitBehavior_WaitHonoursCancellation(t *testing.T) {
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*helloRequest](b, helloHandler(nil))
	}, behaviors.NewRateLimitBehavior(0.001, 1, true))
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &helloRequest{Name: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Send(ctx, &helloRequest{Name: "a"})

	assert.Error(t, err)
}

func TestRetryBehavior_RetriesTemporaryQueryFailures(t *testing.T) {
	// Arrange
	var attempts int32
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*listQuery](b, mediator.NewHandler(func(ctx context.Context, q *listQuery) (*listResult, error) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return nil, temporaryError{}
			}
			return &listResult{Total: 3}, nil
		}))
	}, behaviors.NewRetryBehavior(5, time.Millisecond, 5*time.Millisecond, false))
	require.NoError(t, err)

	// Act
	result, err := mediator.Send[*listResult](context.Background(), m, &listQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRetryBehavior_DoesNotRetryCommandsByDefault(t *testing.T) {
	var attempts int32
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, temporaryError{}
		}))
	}, behaviors.NewRetryBehavior(5, time.Millisecond, 5*time.Millisecond, false))
	require.NoError(t, err)

	_, err = m.Send(context.Background(), &recordCommand{})

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestRetryBehavior_StopsOnPermanentFailure(t *testing.T) {
	var attempts int32
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*listQuery](b, mediator.NewHandler(func(ctx context.Context, q *listQuery) (*listResult, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, errors.New("bad query")
		}))
	}, behaviors.NewRetryBehavior(5, time.Millisecond, 5*time.Millisecond, false))
	require.NoError(t, err)

	_, err = m.Send(context.Background(), &listQuery{})

	assert.Equal(t, mediator.ErrorKindHandlerFailure, mediator.ErrorKindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestCachingBehavior_HitSkipsHandler(t *testing.T) {
	// Arrange
	cache := newMapCache()
	var calls int32
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*listQuery](b, mediator.NewHandler(func(ctx context.Context, q *listQuery) (*listResult, error) {
			atomic.AddInt32(&calls, 1)
			return &listResult{Names: []string{q.Name}, Total: 1}, nil
		}))
	}, behaviors.NewCachingBehavior(cache, time.Minute, "test:"))
	require.NoError(t, err)

	// Act
	first, err := mediator.Send[*listResult](context.Background(), m, &listQuery{Name: "Tester"})
	require.NoError(t, err)
	second, err := mediator.Send[*listResult](context.Background(), m, &listQuery{Name: "Tester"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestCachingBehavior_ReadFailureFallsThrough(t *testing.T) {
	cache := newMapCache()
	cache.failGet = true
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*listQuery](b, mediator.NewHandler(func(ctx context.Context, q *listQuery) (*listResult, error) {
			return &listResult{Total: 7}, nil
		}))
	}, behaviors.NewCachingBehavior(cache, time.Minute, ""))
	require.NoError(t, err)

	result, err := mediator.Send[*listResult](context.Background(), m, &listQuery{Name: "x"})

	require.NoError(t, err)
	assert.Equal(t, 7, result.Total)
}

func TestCachingBehavior_CommandInvalidatesQueries(t *testing.T) {
	// Arrange
	cache := newMapCache()
	var calls int32
	m, err := buildMediator(func(b *mediator.Builder) error {
		if err := mediator.Handle[*listQuery](b, mediator.NewHandler(func(ctx context.Context, q *listQuery) (*listResult, error) {
			return &listResult{Total: int(atomic.AddInt32(&calls, 1))}, nil
		})); err != nil {
			return err
		}
		return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
			return &helloReply{}, nil
		}))
	}, behaviors.NewCachingBehavior(cache, time.Minute, "test:"))
	require.NoError(t, err)

	// Act
	before, err := mediator.Send[*listResult](context.Background(), m, &listQuery{Name: "a"})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &recordCommand{Name: "a"})
	require.NoError(t, err)
	after, err := mediator.Send[*listResult](context.Background(), m, &listQuery{Name: "a"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, before.Total)
	assert.Equal(t, 2, after.Total)
}

func TestAuditBehavior_RecordsCommandsOnly(t *testing.T) {
	// Arrange
	sink := &recordingSink{}
	clock := shared.NewMockClock(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	m, err := buildMediator(func(b *mediator.Builder) error {
		if err := mediator.Handle[*helloRequest](b, helloHandler(nil)); err != nil {
			return err
		}
		return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
			if c.Name == "" {
				return nil, errors.New("name required")
			}
			return &helloReply{}, nil
		}))
	}, behaviors.NewRequestIDBehavior(), behaviors.NewAuditBehavior(sink, clock))
	require.NoError(t, err)

	// Act
	_, err = m.Send(context.Background(), &helloRequest{Name: "a"})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &recordCommand{Name: "a"})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &recordCommand{})
	require.Error(t, err)

	// Assert
	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Succeeded)
	assert.Equal(t, "command", entries[0].Kind)
	assert.Equal(t, "*behaviors_test.recordCommand", entries[0].RequestType)
	assert.NotEmpty(t, entries[0].RequestID)
	assert.Equal(t, clock.Now(), entries[0].Timestamp)
	assert.False(t, entries[1].Succeeded)
	assert.Equal(t, "HANDLER_FAILURE", entries[1].ErrorKind)
}

func TestAuditBehavior_SinkFailureDoesNotFailDispatch(t *testing.T) {
	sink := &recordingSink{err: errors.New("audit table locked")}
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*recordCommand](b, mediator.NewHandler(func(ctx context.Context, c *recordCommand) (*helloReply, error) {
			return &helloReply{Message: "ok"}, nil
		}))
	}, behaviors.NewAuditBehavior(sink, nil))
	require.NoError(t, err)

	reply, err := mediator.Send[*helloReply](context.Background(), m, &recordCommand{})

	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Message)
}

func TestSpanName(t *testing.T) {
	assert.Equal(t, "Request(helloRequest)", behaviors.SpanName(&helloRequest{}))
	assert.Equal(t, "Request(nil)", behaviors.SpanName(nil))
}

func TestRecoveryBehavior_KeepsHandlerFailureKindAndLogsStack(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m, err := buildMediator(func(b *mediator.Builder) error {
		return mediator.Handle[*helloRequest](b, mediator.NewHandler(func(ctx context.Context, r *helloRequest) (*helloReply, error) {
			panic("boom")
		}))
	}, behaviors.NewRecoveryBehavior())
	require.NoError(t, err)
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	_, err = m.Send(ctx, &helloRequest{Name: "a"})

	// Assert
	assert.Equal(t, mediator.ErrorKindHandlerFailure, mediator.ErrorKindOf(err))
	var panicErr *mediator.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "boom", panicErr.Value)
	assert.Contains(t, buf.String(), "recovered panic")
	assert.Contains(t, buf.String(), "error_kind=HANDLER_FAILURE")
	assert.Contains(t, buf.String(), "stack=")
}
