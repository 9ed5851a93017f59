package mediator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Registry maps concrete request types to their handlers.
//
// Registration happens once at startup. Duplicate registrations are kept so
// that Resolve and Validate can report them as ambiguous. After Freeze the
// registry is read-only and Resolve is safe for concurrent use without locking.
type Registry struct {
	mu       sync.Mutex
	handlers map[reflect.Type][]RequestHandler
	frozen   atomic.Bool
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[reflect.Type][]RequestHandler),
	}
}

// Register registers a handler for a specific request type
func (r *Registry) Register(requestType reflect.Type, handler RequestHandler) error {
	if requestType == nil {
		return ErrNilRequestType
	}

	if handler == nil {
		return ErrNilHandler
	}

	if err := checkClassification(requestType); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("cannot register handler for type %s: %w", requestType, ErrRegistryFrozen)
	}

	r.handlers[requestType] = append(r.handlers[requestType], handler)
	return nil
}

// RegisterHandler registers a handler for the request type T with type inference
//
//	mediator.RegisterHandler[*hello.HelloRequest](registry, handler)
func RegisterHandler[T Request](r *Registry, handler RequestHandler) error {
	return r.Register(reflect.TypeFor[T](), handler)
}

// Resolve returns the single handler registered for requestType
func (r *Registry) Resolve(requestType reflect.Type) (RequestHandler, error) {
	handlers := r.handlers[requestType]

	switch len(handlers) {
	case 0:
		return nil, &HandlerNotFoundError{RequestType: requestType}
	case 1:
		return handlers[0], nil
	default:
		return nil, &HandlerAmbiguousError{RequestType: requestType, Count: len(handlers)}
	}
}

// Validate reports every request type that does not have exactly one handler
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, requestType := range r.sortedTypes() {
		if _, err := r.Resolve(requestType); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RequestTypes returns the registered request types ordered by name
func (r *Registry) RequestTypes() []reflect.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedTypes()
}

// Freeze makes the registry read-only
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether the registry has been frozen
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

func (r *Registry) sortedTypes() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}
