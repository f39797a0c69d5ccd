package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/dago-node-renderer/internal/config"
	"github.com/aescanero/dago-node-renderer/internal/eval/cel"
	"github.com/aescanero/dago-node-renderer/internal/eval/template"
	"github.com/aescanero/dago-node-renderer/internal/partials"
	"github.com/aescanero/dago-node-renderer/internal/router"
	"github.com/aescanero/dago-node-renderer/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting render worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(cfg.RedisOptions())

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// The when helper and routing rules are only available with CEL enabled
	var evaluator *cel.Evaluator
	if cfg.CELEnabled {
		evaluator, err = cel.NewEvaluator()
		if err != nil {
			logger.Fatal("failed to create CEL evaluator", zap.Error(err))
		}
	}

	// Initialize template engine
	engine := initEngine(cfg, redisClient, evaluator, logger)
	logger.Info("template engine initialized",
		zap.String("partials_dir", cfg.PartialsDir),
		zap.String("partials_key", cfg.PartialsKey),
		zap.String("default_locale", cfg.DefaultLocale),
	)

	// Drop compiled templates when partial files change
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if cfg.WatchPartials {
		err := partials.Watch(watchCtx, cfg.PartialsDir, func(name string) {
			logger.Info("partial changed, clearing template cache", zap.String("partial", name))
			engine.ClearCache()
		}, logger)
		if err != nil {
			logger.Fatal("failed to watch partials", zap.Error(err))
		}
	}

	rendererOpts := []worker.RendererOption{
		// Execution state written by the other graph nodes
		worker.WithStateStore(worker.NewRedisStateStore(redisClient, logger)),
		worker.WithRouter(router.NewRouter(evaluator, logger)),
		worker.WithResolveTargets(cfg.ResolveTargets),
		worker.WithTimeout(cfg.RenderTimeout),
	}

	// Routes for requests that name no page
	if cfg.RoutesFile != "" {
		routes, err := router.LoadConfig(cfg.RoutesFile)
		if err != nil {
			logger.Fatal("failed to load routes", zap.Error(err))
		}
		logger.Info("routes loaded", zap.String("file", cfg.RoutesFile), zap.Int("rules", len(routes.Rules)))
		rendererOpts = append(rendererOpts, worker.WithDefaultRoutes(routes))
	}

	// Initialize renderer
	renderer := worker.NewRenderer(engine, logger, rendererOpts...)

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, renderer, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start HTTP server
	gin.SetMode(gin.ReleaseMode)
	server := worker.NewServer(cfg.HTTPPort, redisClient, renderer, logger)
	if err := server.Start(); err != nil {
		logger.Fatal("failed to start http server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("render worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	stopWatch()

	// Stop HTTP server
	if err := server.Stop(); err != nil {
		logger.Error("failed to stop http server", zap.Error(err))
	}

	// Stop worker
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	default:
		logger.Info("worker stopped gracefully")
	}
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// initEngine builds the template engine. Partials come from PARTIALS_DIR,
// then from the PARTIALS_KEY redis hash.
func initEngine(cfg *config.Config, redisClient *redis.Client, evaluator *cel.Evaluator, logger *zap.Logger) *template.Engine {
	var sources partials.Chain
	if cfg.PartialsDir != "" {
		dir := partials.NewDirSource(os.DirFS(cfg.PartialsDir))
		if names, err := dir.Names(); err != nil {
			logger.Warn("failed to list partials", zap.String("dir", cfg.PartialsDir), zap.Error(err))
		} else {
			logger.Info("found partials", zap.String("dir", cfg.PartialsDir), zap.Int("count", len(names)))
		}
		sources = append(sources, dir)
	}
	if cfg.PartialsKey != "" {
		sources = append(sources, partials.NewRedisSource(redisClient, cfg.PartialsKey))
	}

	opts := []template.Option{
		template.WithSource(sources),
		template.WithLocale(cfg.DefaultLocale),
		template.WithLogger(logger),
	}

	if evaluator != nil {
		opts = append(opts, template.WithEvaluator(evaluator))
	}

	return template.NewEngine(opts...)
}
