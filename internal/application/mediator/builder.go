package mediator

import (
	"errors"
	"fmt"
	"reflect"
)

// Builder assembles the handler registry and the ordered behavior chain at startup.
// Registration order of behaviors is nesting order: the first registered is outermost.
type Builder struct {
	registry  *Registry
	behaviors []behaviorEntry
	errs      []error
}

type behaviorEntry struct {
	name     string
	behavior Behavior
	applies  func(requestType reflect.Type) bool
}

// NewBuilder creates a builder with an empty registry
func NewBuilder() *Builder {
	return NewBuilderWithRegistry(NewRegistry())
}

// NewBuilderWithRegistry creates a builder around an existing registry
func NewBuilderWithRegistry(registry *Registry) *Builder {
	return &Builder{registry: registry}
}

// Registry returns the registry the builder fills
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Register registers a handler for requestType
func (b *Builder) Register(requestType reflect.Type, handler RequestHandler) error {
	return b.registry.Register(requestType, handler)
}

// Handle registers a handler for the request type T
func Handle[T Request](b *Builder, handler RequestHandler) error {
	return RegisterHandler[T](b.registry, handler)
}

// Use appends behaviors that apply to every request type
func (b *Builder) Use(behaviors ...Behavior) *Builder {
	for _, behavior := range behaviors {
		b.UseWhen(nil, behavior)
	}
	return b
}

// UseWhen appends a behavior that applies only to request types accepted by applies.
// A nil predicate applies the behavior to every request type.
func (b *Builder) UseWhen(applies func(requestType reflect.Type) bool, behavior Behavior) *Builder {
	if behavior == nil {
		b.errs = append(b.errs, fmt.Errorf("behavior #%d: %w", len(b.behaviors)+1, ErrNilBehavior))
		return b
	}
	b.behaviors = append(b.behaviors, behaviorEntry{
		name:     behaviorName(behavior),
		behavior: behavior,
		applies:  applies,
	})
	return b
}

// UseForKind appends a behavior that applies only to requests of the given kind
func (b *Builder) UseForKind(kind Kind, behavior Behavior) *Builder {
	return b.UseWhen(func(requestType reflect.Type) bool {
		return KindOfType(requestType) == kind
	}, behavior)
}

// UseFor appends a behavior that applies only to the request type T
func UseFor[T Request](b *Builder, behavior Behavior) *Builder {
	target := reflect.TypeFor[T]()
	return b.UseWhen(func(requestType reflect.Type) bool {
		return requestType == target
	}, behavior)
}

// BuildOption customises Build
type BuildOption func(*buildOptions)

type buildOptions struct {
	lazyValidation bool
}

// WithLazyValidation defers handler-count validation to dispatch time
func WithLazyValidation() BuildOption {
	return func(o *buildOptions) {
		o.lazyValidation = true
	}
}

// Build freezes the registry and returns the dispatcher.
// Unless WithLazyValidation is given, every registered request type must have exactly one handler.
func (b *Builder) Build(opts ...BuildOption) (*Dispatcher, error) {
	options := buildOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	if !options.lazyValidation {
		if err := b.registry.Validate(); err != nil {
			return nil, fmt.Errorf("invalid handler registry: %w", err)
		}
	}

	b.registry.Freeze()

	behaviors := make([]behaviorEntry, len(b.behaviors))
	copy(behaviors, b.behaviors)

	d := &Dispatcher{
		registry:  b.registry,
		behaviors: behaviors,
		pipelines: make(map[reflect.Type][]behaviorEntry),
	}
	for _, requestType := range b.registry.RequestTypes() {
		d.pipelines[requestType] = selectBehaviors(behaviors, requestType)
	}

	return d, nil
}

// NewMediator builds a dispatcher from a registry and behaviors applying to every request
func NewMediator(registry *Registry, behaviors ...Behavior) (*Dispatcher, error) {
	return NewBuilderWithRegistry(registry).Use(behaviors...).Build()
}

// selectBehaviors keeps the applicable behaviors in registration order
func selectBehaviors(behaviors []behaviorEntry, requestType reflect.Type) []behaviorEntry {
	selected := make([]behaviorEntry, 0, len(behaviors))
	for _, entry := range behaviors {
		if entry.applies == nil || entry.applies(requestType) {
			selected = append(selected, entry)
		}
	}
	return selected
}

// Named gives a behavior a stable name used in errors, logs and Describe
func Named(name string, behavior Behavior) Behavior {
	return &namedBehavior{name: name, Behavior: behavior}
}

type namedBehavior struct {
	Behavior
	name string
}

func (n *namedBehavior) Name() string { return n.name }

func behaviorName(behavior Behavior) string {
	if named, ok := behavior.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", behavior)
}
