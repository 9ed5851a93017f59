package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	jaeger "github.com/uber/jaeger-client-go"

	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
)

// NewTracer creates the process tracer and installs it as the global tracer.
// It must be closed on service exit using the returned io.Closer.
// With tracing disabled a no-op tracer is returned.
func NewTracer(cfg config.TracingConfig) (opentracing.Tracer, io.Closer, error) {
	if !cfg.Enabled {
		tracer := opentracing.NoopTracer{}
		opentracing.SetGlobalTracer(tracer)
		return tracer, nopCloser{}, nil
	}

	transport, err := jaeger.NewUDPTransport(cfg.AgentHostPort, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("could not init Jaeger UDP transport: %w", err)
	}

	sampler, err := jaeger.NewProbabilisticSampler(cfg.SampleRate)
	if err != nil {
		return nil, nil, fmt.Errorf("could not init Jaeger sampler: %w", err)
	}

	tracer, closer := jaeger.NewTracer(
		cfg.ServiceName,
		sampler,
		jaeger.NewRemoteReporter(transport),
		jaeger.TracerOptions.Gen128Bit(true),
	)
	opentracing.SetGlobalTracer(tracer)

	return tracer, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
