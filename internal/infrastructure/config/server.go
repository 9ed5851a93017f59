package config

import "time"

// ServerConfig holds gRPC server configuration
type ServerConfig struct {
	// TCP listen address (host:port); ignored when SocketPath is set
	Address string `mapstructure:"address" validate:"required"`

	// Unix socket path; takes precedence over Address when set
	SocketPath string `mapstructure:"socket_path"`

	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Register the gRPC reflection-free health service
	HealthCheck bool `mapstructure:"health_check"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Per-call deadline applied when the client sent none (0 disables)
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}
