package setup

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/opentracing/opentracing-go"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/behaviors"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/commands"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/hello"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/greeter/queries"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/greeting"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
)

// HandlerRegistry holds all application dependencies for handler and behavior creation
type HandlerRegistry struct {
	greetingRepo greeting.GreetingRepository
	clock        shared.Clock
	deps         PipelineDependencies
}

// PipelineDependencies are the collaborators of the configurable behaviors.
// A nil dependency disables the behavior that needs it.
type PipelineDependencies struct {
	Logger             *slog.Logger
	Tracer             opentracing.Tracer
	Validator          *validator.Validate
	Metrics            mediator.Behavior
	Cache              common.Cache
	AuditSink          common.AuditSink
	TransactionManager common.TransactionManager
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(greetingRepo greeting.GreetingRepository, clock shared.Clock, deps PipelineDependencies) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		greetingRepo: greetingRepo,
		clock:        clock,
		deps:         deps,
	}
}

// RegisterGreeterHandlers registers the greeter handlers with the builder
//
// This method registers:
//   - HelloRequest → HelloHandler
//   - RecordGreetingCommand → RecordGreetingHandler
//   - ListGreetingsQuery → ListGreetingsHandler
func (r *HandlerRegistry) RegisterGreeterHandlers(b *mediator.Builder) error {
	if err := b.Register(
		reflect.TypeOf(&hello.HelloRequest{}),
		hello.NewHelloHandler(),
	); err != nil {
		return err
	}

	if err := b.Register(
		reflect.TypeOf(&commands.RecordGreetingCommand{}),
		commands.NewRecordGreetingHandler(r.greetingRepo, r.clock),
	); err != nil {
		return err
	}

	if err := b.Register(
		reflect.TypeOf(&queries.ListGreetingsQuery{}),
		queries.NewListGreetingsHandler(r.greetingRepo),
	); err != nil {
		return err
	}

	return nil
}

// UseBehaviors appends the configured behaviors to the builder in configuration order.
// The first configured behavior is the outermost.
func (r *HandlerRegistry) UseBehaviors(b *mediator.Builder, pipeline config.PipelineConfig, cacheCfg config.CacheConfig) error {
	for _, name := range pipeline.Behaviors {
		behavior, err := r.behavior(name, pipeline, cacheCfg)
		if err != nil {
			return err
		}
		if behavior == nil {
			if r.deps.Logger != nil {
				r.deps.Logger.Warn("behavior disabled: missing dependency", "behavior", name)
			}
			continue
		}
		b.Use(behavior)
	}
	return nil
}

func (r *HandlerRegistry) behavior(name string, pipeline config.PipelineConfig, cacheCfg config.CacheConfig) (mediator.Behavior, error) {
	switch name {
	case config.BehaviorRecovery:
		return behaviors.NewRecoveryBehavior(), nil
	case config.BehaviorRequestID:
		return behaviors.NewRequestIDBehavior(), nil
	case config.BehaviorLogging:
		return behaviors.NewLoggingBehavior(r.deps.Logger), nil
	case config.BehaviorTracing:
		return behaviors.NewTracingBehavior(r.deps.Tracer), nil
	case config.BehaviorMetrics:
		if r.deps.Metrics == nil {
			return nil, nil
		}
		return r.deps.Metrics, nil
	case config.BehaviorValidation:
		return behaviors.NewValidationBehavior(r.deps.Validator), nil
	case config.BehaviorRateLimit:
		return behaviors.NewRateLimitBehavior(pipeline.RateLimit.Requests, pipeline.RateLimit.Burst, pipeline.RateLimit.Wait), nil
	case config.BehaviorRetry:
		return behaviors.NewRetryBehavior(pipeline.Retry.MaxAttempts, pipeline.Retry.BackoffBase, pipeline.Retry.BackoffMax, pipeline.Retry.IncludeCommands), nil
	case config.BehaviorCircuit:
		return behaviors.NewCircuitBreakerBehavior(pipeline.CircuitBreaker.MaxFailures, pipeline.CircuitBreaker.Cooldown, r.clock), nil
	case config.BehaviorCaching:
		if r.deps.Cache == nil {
			return nil, nil
		}
		return behaviors.NewCachingBehavior(r.deps.Cache, cacheCfg.TTL, ""), nil
	case config.BehaviorAudit:
		if r.deps.AuditSink == nil {
			return nil, nil
		}
		return behaviors.NewAuditBehavior(r.deps.AuditSink, r.clock), nil
	case config.BehaviorTransaction:
		return behaviors.NewTransactionBehavior(r.deps.TransactionManager), nil
	default:
		return nil, fmt.Errorf("unknown behavior %q", name)
	}
}

// CreateConfiguredMediator creates a mediator with all greeter handlers and configured behaviors
//
// This is a convenience method that wires the whole pipeline in one call.
// Use this when you need a fully configured mediator for application use.
func (r *HandlerRegistry) CreateConfiguredMediator(cfg *config.Config) (*mediator.Dispatcher, error) {
	b := mediator.NewBuilder()

	if err := r.RegisterGreeterHandlers(b); err != nil {
		return nil, fmt.Errorf("failed to register greeter handlers: %w", err)
	}

	if err := r.UseBehaviors(b, cfg.Pipeline, cfg.Cache); err != nil {
		return nil, fmt.Errorf("failed to configure pipeline: %w", err)
	}

	var opts []mediator.BuildOption
	if !cfg.Pipeline.EagerValidation {
		opts = append(opts, mediator.WithLazyValidation())
	}

	return b.Build(opts...)
}
