package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maxwell/internal/adapters/ai"
	"maxwell/internal/adapters/clickhouse"
	"maxwell/internal/adapters/config"
	"maxwell/internal/adapters/embeddings"
	"maxwell/internal/adapters/errors/noop"
	"maxwell/internal/adapters/errors/sentry"
	"maxwell/internal/adapters/kafka"
	"maxwell/internal/adapters/postgres"
	"maxwell/internal/adapters/redis"
	"maxwell/internal/agents"
	"maxwell/internal/domain/aiusage"
	"maxwell/internal/domain/convlog"
	"maxwell/internal/domain/dialogue"
	"maxwell/internal/domain/personalization"
	"maxwell/internal/domain/wiki"
	"maxwell/internal/httpapi"
	"maxwell/internal/metrics"
	clickhouserepo "maxwell/internal/repository/clickhouse"
	postgresrepo "maxwell/internal/repository/postgres"
	redisrepo "maxwell/internal/repository/redis"
	"maxwell/internal/tools"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()
	startMetricsServer(cfg.App.MetricsAddr, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	var usageRecorder aiusage.Recorder = aiusage.NoopRecorder{}
	if cfg.ClickHouse.Enabled() {
		chClient, err := clickhouse.NewClient(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to connect to ClickHouse: %v", err)
		}
		defer chClient.Close()

		usageRepo := clickhouserepo.NewAIUsageRepository(chClient.Conn())
		usageRepo.Start(ctx)
		defer usageRepo.Stop(context.Background())
		usageRecorder = usageRepo
	} else {
		log.Info("ClickHouse disabled; AI usage logging is a no-op")
	}

	var turnLog convlog.Logger = convlog.Noop{}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		defer producer.Close()
		turnLog = kafka.NewConversationLogger(producer)
	} else {
		log.Info("Kafka disabled; conversation turns are not published")
	}

	// AI providers
	providers, err := ai.BuildRegistry(cfg.AI)
	if err != nil {
		log.Fatalf("Failed to build AI provider registry: %v", err)
	}
	log.Infof("AI providers registered: %v", providers.List())

	// Story wiki with semantic entity lookup
	var embedder wiki.Embedder
	if cfg.AI.OpenAIKey != "" {
		embedder, err = embeddings.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.EmbeddingModel, cfg.AI.RequestTimeout)
		if err != nil {
			log.Fatalf("Failed to init embeddings provider: %v", err)
		}
	} else {
		log.Warn("No OpenAI key; semantic entity lookup is unavailable")
	}
	wikiService := wiki.NewService(postgresrepo.NewWikiRepository(pgClient.DB()), embedder)

	// Personalization
	personalizationService := personalization.NewService(
		postgresrepo.NewPersonalizationRepository(pgClient.DB()),
		redisrepo.NewSuppressionCache(redisClient.Client(), 15*time.Minute),
	)

	// Tools
	toolRegistry := tools.NewRegistry()
	tools.RegisterAnalyzers(toolRegistry)
	tools.RegisterWikiLookup(toolRegistry, wikiService)

	// Analysis pipeline
	costTracker := agents.NewCostTracker()
	runner := agents.NewRunner(
		providers,
		toolRegistry,
		cfg.AI.DefaultProvider,
		cfg.AI.DefaultModel,
		cfg.Agents.MaxToolIterations,
		costTracker,
		usageRecorder,
	)

	orchestrator := agents.NewOrchestrator(
		agents.NewAgentSet(runner),
		personalizationService,
		personalizationService,
	)

	var sessions dialogue.Store = redisrepo.NewDialogueSessionRepository(redisClient.Client(), cfg.Redis.SessionTTL)

	front := agents.NewFront(
		agents.NewRouter(),
		orchestrator,
		agents.NewConflictReasoner(),
		agents.NewSynthesizer(runner),
		runner,
		wikiService,
		sessions,
		turnLog,
		cfg.Agents.ContextTokens,
		cfg.Agents.MaxTokens,
	)

	api := httpapi.NewServer(front, cfg.Agents.ExecutionTimeout)
	server := &http.Server{Addr: cfg.App.ListenAddr, Handler: api.Routes()}
	go func() {
		log.Infof("API listening on %s", cfg.App.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server stopped: %v", err)
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, errorTracker, log)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("API shutdown: %v", err)
	}
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// startMetricsServer exposes Prometheus metrics on its own listener
func startMetricsServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	go func() {
		log.Infof("Metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics server stopped: %v", err)
		}
	}()
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
