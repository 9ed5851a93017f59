package config

import "time"

// Behavior names accepted in PipelineConfig.Behaviors
const (
	BehaviorRecovery    = "recovery"
	BehaviorRequestID   = "request_id"
	BehaviorLogging     = "logging"
	BehaviorTracing     = "tracing"
	BehaviorMetrics     = "metrics"
	BehaviorValidation  = "validation"
	BehaviorRateLimit   = "rate_limit"
	BehaviorRetry       = "retry"
	BehaviorCircuit     = "circuit_breaker"
	BehaviorCaching     = "caching"
	BehaviorAudit       = "audit"
	BehaviorTransaction = "transaction"
)

// PipelineConfig holds the mediator behavior chain configuration
type PipelineConfig struct {
	// Behaviors in nesting order: the first entry is outermost
	Behaviors []string `mapstructure:"behaviors" validate:"unique,dive,oneof=recovery request_id logging tracing metrics validation rate_limit retry circuit_breaker caching audit transaction"`

	// Validate handler registrations at startup rather than on first dispatch
	EagerValidation bool `mapstructure:"eager_validation"`

	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// RateLimitConfig holds token bucket configuration
type RateLimitConfig struct {
	// Requests per second
	Requests float64 `mapstructure:"requests" validate:"gt=0"`

	// Bucket size
	Burst int `mapstructure:"burst" validate:"min=1"`

	// Wait for a token instead of failing fast
	Wait bool `mapstructure:"wait"`
}

// RetryConfig holds retry behavior configuration
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	BackoffMax  time.Duration `mapstructure:"backoff_max"`

	// Retry commands too; off by default since commands may not be idempotent
	IncludeCommands bool `mapstructure:"include_commands"`
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	// Consecutive handler failures that open the circuit of a request type
	MaxFailures int `mapstructure:"max_failures" validate:"min=1"`

	// Time an open circuit waits before letting a trial dispatch through
	Cooldown time.Duration `mapstructure:"cooldown" validate:"gt=0"`
}

// DefaultBehaviors is the behavior order used when none is configured
func DefaultBehaviors() []string {
	return []string{
		BehaviorRecovery,
		BehaviorRequestID,
		BehaviorLogging,
		BehaviorTracing,
		BehaviorMetrics,
		BehaviorValidation,
		BehaviorRateLimit,
		BehaviorCaching,
		BehaviorCircuit,
		BehaviorRetry,
		BehaviorAudit,
		BehaviorTransaction,
	}
}
