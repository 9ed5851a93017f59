package behaviors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldError describes one failed validation rule
type FieldError struct {
	Field string
	Rule  string
	Param string
}

// ValidationError is returned when a request fails struct-tag validation
type ValidationError struct {
	RequestType string
	Fields      []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Param != "" {
			parts[i] = fmt.Sprintf("%s failed %s=%s", f.Field, f.Rule, f.Param)
		} else {
			parts[i] = fmt.Sprintf("%s failed %s", f.Field, f.Rule)
		}
	}
	return fmt.Sprintf("invalid %s: %s", e.RequestType, strings.Join(parts, "; "))
}

// RateLimitedError is returned when the rate limiter has no token available
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// Temporary marks rate limiting as transient
func (e *RateLimitedError) Temporary() bool { return true }

// ErrCircuitOpen is matched by every CircuitOpenError
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitOpenError is returned while the circuit of a request type is open
type CircuitOpenError struct {
	RequestType string
	RetryAfter  time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %s, retry after %s", e.RequestType, e.RetryAfter)
}

// Is matches ErrCircuitOpen
func (e *CircuitOpenError) Is(target error) bool { return target == ErrCircuitOpen }
