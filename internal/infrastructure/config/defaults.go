package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "greeter.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "greeter"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "greeter"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:50061"
	}
	if cfg.Server.PIDFile == "" {
		cfg.Server.PIDFile = "/tmp/greeter-daemon.pid"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.Rotation.MaxSize == 0 {
		cfg.Logging.Rotation.MaxSize = 100 // MB
	}
	if cfg.Logging.Rotation.MaxBackups == 0 {
		cfg.Logging.Rotation.MaxBackups = 3
	}
	if cfg.Logging.Rotation.MaxAge == 0 {
		cfg.Logging.Rotation.MaxAge = 28 // days
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Tracing defaults
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "greeter-daemon"
	}
	if cfg.Tracing.AgentHostPort == "" {
		cfg.Tracing.AgentHostPort = "localhost:6831"
	}
	if cfg.Tracing.SampleRate == 0 {
		cfg.Tracing.SampleRate = 1
	}

	// Cache defaults
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "memory"
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "greeter:"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Minute
	}

	// Pipeline defaults
	if len(cfg.Pipeline.Behaviors) == 0 {
		cfg.Pipeline.Behaviors = DefaultBehaviors()
	}
	if cfg.Pipeline.RateLimit.Requests == 0 {
		cfg.Pipeline.RateLimit.Requests = 50
	}
	if cfg.Pipeline.RateLimit.Burst == 0 {
		cfg.Pipeline.RateLimit.Burst = 100
	}
	if cfg.Pipeline.Retry.MaxAttempts == 0 {
		cfg.Pipeline.Retry.MaxAttempts = 3
	}
	if cfg.Pipeline.Retry.BackoffBase == 0 {
		cfg.Pipeline.Retry.BackoffBase = 100 * time.Millisecond
	}
	if cfg.Pipeline.Retry.BackoffMax == 0 {
		cfg.Pipeline.Retry.BackoffMax = 2 * time.Second
	}
	if cfg.Pipeline.CircuitBreaker.MaxFailures == 0 {
		cfg.Pipeline.CircuitBreaker.MaxFailures = 5
	}
	if cfg.Pipeline.CircuitBreaker.Cooldown == 0 {
		cfg.Pipeline.CircuitBreaker.Cooldown = 30 * time.Second
	}
}
