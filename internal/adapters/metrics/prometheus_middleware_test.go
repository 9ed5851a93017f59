package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

type pingQuery struct {
	mediator.Query[*pingResult]
	Fail bool
}

type pingResult struct{}

func TestPrometheusMiddleware_RecordsOutcome(t *testing.T) {
	// Arrange
	registry := prometheus.NewRegistry()
	collector := NewDispatchMetricsCollector()
	require.NoError(t, collector.Register(registry))

	b := mediator.NewBuilder()
	require.NoError(t, mediator.Handle[*pingQuery](b, mediator.NewHandler(func(ctx context.Context, q *pingQuery) (*pingResult, error) {
		if q.Fail {
			return nil, errors.New("fail")
		}
		return &pingResult{}, nil
	})))
	b.Use(PrometheusMiddleware(collector))
	m, err := b.Build()
	require.NoError(t, err)

	// Act
	_, err = m.Send(context.Background(), &pingQuery{})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), &pingQuery{Fail: true})
	require.Error(t, err)

	// Assert
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("pingQuery", "query", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("pingQuery", "query", "handler_failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.inFlight.WithLabelValues("pingQuery")))
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	behavior := PrometheusMiddleware(nil)

	response, err := behavior.Handle(context.Background(), &pingQuery{}, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", response)
}

func TestExtractRequestName(t *testing.T) {
	assert.Equal(t, "pingQuery", extractRequestName(&pingQuery{}))
	assert.Equal(t, "UnknownRequest", extractRequestName(nil))
}
