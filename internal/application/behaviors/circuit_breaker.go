package behaviors

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
)

// CircuitState represents the state of one request type's circuit
type CircuitState int

const (
	// CircuitClosed lets every dispatch through
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects dispatches until the cool-down has passed
	CircuitOpen
	// CircuitHalfOpen lets a single trial dispatch through
	CircuitHalfOpen
)

// String returns the name of the state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

type circuit struct {
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	trialInFlight   bool
}

// CircuitBreakerBehavior stops dispatching a request type after maxFailures
// consecutive handler failures. Once cooldown has passed one trial dispatch is let
// through: success closes the circuit, failure opens it again.
//
// Only HANDLER_FAILURE counts. Cancellations and failures of inner behaviors
// (validation, rate limiting) say nothing about the handler's health.
type CircuitBreakerBehavior struct {
	maxFailures int
	cooldown    time.Duration
	clock       shared.Clock

	mu       sync.Mutex
	circuits map[reflect.Type]*circuit
}

// NewCircuitBreakerBehavior creates the behavior. A nil clock uses the real clock.
func NewCircuitBreakerBehavior(maxFailures int, cooldown time.Duration, clock shared.Clock) *CircuitBreakerBehavior {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &CircuitBreakerBehavior{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		clock:       clock,
		circuits:    make(map[reflect.Type]*circuit),
	}
}

// Name implements the mediator's behavior naming
func (b *CircuitBreakerBehavior) Name() string { return "circuit_breaker" }

// Handle implements mediator.Behavior
func (b *CircuitBreakerBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	requestType := reflect.TypeOf(request)

	trial, err := b.admit(requestType)
	if err != nil {
		return nil, err
	}

	// The lock is not held while the chain runs
	response, err := next(ctx, request)

	b.record(requestType, trial, err)
	return response, err
}

// admit checks the circuit and moves it to half-open once the cool-down is over
func (b *CircuitBreakerBehavior) admit(requestType reflect.Type) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(requestType)
	switch c.state {
	case CircuitOpen:
		elapsed := b.clock.Now().Sub(c.lastFailureTime)
		if elapsed < b.cooldown {
			return false, &CircuitOpenError{RequestType: requestType.String(), RetryAfter: b.cooldown - elapsed}
		}
		c.state = CircuitHalfOpen
		c.trialInFlight = true
		return true, nil
	case CircuitHalfOpen:
		if c.trialInFlight {
			return false, &CircuitOpenError{RequestType: requestType.String(), RetryAfter: 0}
		}
		c.trialInFlight = true
		return true, nil
	}
	return false, nil
}

func (b *CircuitBreakerBehavior) record(requestType reflect.Type, trial bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(requestType)
	if trial {
		c.trialInFlight = false
	}

	switch mediator.ErrorKindOf(err) {
	case mediator.ErrorKindNone:
		c.failureCount = 0
		c.state = CircuitClosed
	case mediator.ErrorKindHandlerFailure:
		c.failureCount++
		c.lastFailureTime = b.clock.Now()
		if c.state == CircuitHalfOpen || c.failureCount >= b.maxFailures {
			c.state = CircuitOpen
		}
	default:
		// A trial that ended without reaching a verdict lets the next dispatch try again
	}
}

func (b *CircuitBreakerBehavior) circuit(requestType reflect.Type) *circuit {
	c, ok := b.circuits[requestType]
	if !ok {
		c = &circuit{state: CircuitClosed}
		b.circuits[requestType] = c
	}
	return c
}

// State returns the circuit state of requestType
func (b *CircuitBreakerBehavior) State(requestType reflect.Type) CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.circuits[requestType]; ok {
		return c.state
	}
	return CircuitClosed
}

// FailureCount returns the consecutive handler failures of requestType
func (b *CircuitBreakerBehavior) FailureCount(requestType reflect.Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.circuits[requestType]; ok {
		return c.failureCount
	}
	return 0
}

// Reset closes every circuit
func (b *CircuitBreakerBehavior) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.circuits = make(map[reflect.Type]*circuit)
}
