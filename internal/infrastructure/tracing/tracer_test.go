package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
)

func TestNewTracer_Disabled(t *testing.T) {
	tracer, closer, err := NewTracer(config.TracingConfig{Enabled: false})

	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tracer)
	assert.NoError(t, closer.Close())
}

func TestNewTracer_Jaeger(t *testing.T) {
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	tracer, closer, err := NewTracer(config.TracingConfig{
		Enabled:       true,
		ServiceName:   "greeter-test",
		AgentHostPort: "127.0.0.1:6831",
		SampleRate:    1,
	})
	require.NoError(t, err)
	defer closer.Close()

	span := tracer.StartSpan("Request(HelloRequest)")
	span.Finish()

	assert.Same(t, tracer, opentracing.GlobalTracer())
}
