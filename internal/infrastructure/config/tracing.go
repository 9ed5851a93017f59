package config

// TracingConfig holds Jaeger tracer configuration
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Service name reported to Jaeger
	ServiceName string `mapstructure:"service_name" validate:"required"`

	// Jaeger agent UDP address (host:port)
	AgentHostPort string `mapstructure:"agent_host_port" validate:"required"`

	// Probabilistic sampling rate between 0 and 1
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}
