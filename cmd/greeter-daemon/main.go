package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/grpc-mediator-go/internal/adapters/cache"
	"github.com/andrescamacho/grpc-mediator-go/internal/adapters/grpc"
	"github.com/andrescamacho/grpc-mediator-go/internal/adapters/metrics"
	"github.com/andrescamacho/grpc-mediator-go/internal/adapters/persistence"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/common"
	"github.com/andrescamacho/grpc-mediator-go/internal/application/setup"
	"github.com/andrescamacho/grpc-mediator-go/internal/domain/shared"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/config"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/database"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/logging"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/grpc-mediator-go/internal/infrastructure/tracing"
)

func main() {
	var (
		configPath string
		force      bool
	)

	rootCmd := &cobra.Command{
		Use:   "greeter-daemon",
		Short: "Serve the Greeter gRPC service through the mediator pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(configPath, force)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: search ., ./configs, /etc/grpc-mediator)")
	rootCmd.Flags().BoolVar(&force, "force", false, "Kill any existing daemon and start a new one")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func start(configPath string, force bool) error {
	fmt.Println("Greeter Daemon v0.1.0")
	fmt.Println("=====================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Server.PIDFile)
	pf := pidfile.New(cfg.Server.PIDFile)

	if err := pf.Acquire(); err != nil {
		if !force {
			return fmt.Errorf("failed to acquire PID file lock: %w\nUse --force to kill the existing daemon", err)
		}

		// Force mode: kill existing daemon and try again
		fmt.Println("Force mode enabled - attempting to kill existing daemon...")
		if killErr := pf.KillExisting(); killErr != nil {
			return fmt.Errorf("failed to kill existing daemon: %w", killErr)
		}
		fmt.Println("Existing daemon killed")

		if err := pf.Acquire(); err != nil {
			return fmt.Errorf("failed to acquire PID file lock after killing existing daemon: %w", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	return run(cfg)
}

func run(cfg *config.Config) error {
	// 1. Logger
	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracer
	tracer, tracerCloser, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer tracerCloser.Close()

	// 3. Database
	logger.Info("connecting to database", "type", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	clock := shared.NewRealClock()
	greetingRepo := persistence.NewGormGreetingRepository(db)
	auditRepo := persistence.NewGormAuditRepository(db)
	txManager := persistence.NewGormTransactionManager(db)

	// 4. Response cache
	responseCache, cacheCloser, err := newCache(ctx, cfg.Cache, clock)
	if err != nil {
		return err
	}
	defer cacheCloser.Close()

	// 5. Metrics
	deps := setup.PipelineDependencies{
		Logger:             logger,
		Tracer:             tracer,
		Validator:          validator.New(validator.WithRequiredStructEnabled()),
		Cache:              responseCache,
		AuditSink:          auditRepo,
		TransactionManager: txManager,
	}

	if cfg.Metrics.Enabled {
		registry := metrics.InitRegistry()
		collector := metrics.NewDispatchMetricsCollector()
		if err := collector.Register(registry); err != nil {
			return fmt.Errorf("failed to register dispatch metrics: %w", err)
		}
		deps.Metrics = metrics.PrometheusMiddleware(collector)

		metricsServer := metrics.NewServer(registry, cfg.Metrics.ListenAddress(), cfg.Metrics.Path, logger)
		metricsServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	// 6. Mediator
	handlerRegistry := setup.NewHandlerRegistry(greetingRepo, clock, deps)
	med, err := handlerRegistry.CreateConfiguredMediator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mediator: %w", err)
	}
	logger.Info("mediator configured",
		"behaviors", cfg.Pipeline.Behaviors,
		"request_types", len(med.RequestTypes()),
	)

	// 7. gRPC server
	if cfg.Server.SocketPath != "" {
		// Ensure socket directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Server.SocketPath), 0755); err != nil {
			return fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	server, err := grpc.NewServer(med, cfg.Server, logger)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return err
	}

	logger.Info("daemon stopped")
	return nil
}

// newCache selects the response cache backend
func newCache(ctx context.Context, cfg config.CacheConfig, clock shared.Clock) (common.Cache, io.Closer, error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Address, cfg.Prefix,
			cache.WithPassword(cfg.Password),
			cache.WithDB(cfg.DB),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisCache, redisCache, nil
	}

	return cache.NewMemoryCache(clock), io.NopCloser(nil), nil
}
