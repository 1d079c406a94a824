package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/config"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/email"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/geo"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository/postgres"
	bloodService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/blood"
	escalationService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/escalation"
	eventService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/event"
	matchingService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/matching"
	internalWorker "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/worker"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/messaging/redis"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/metrics"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/worker"
)

// WorkerConfig is read from the environment. The worker runs headless
// next to the API and shares its database and broker.
type WorkerConfig struct {
	DatabaseHost     string `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string `envconfig:"DB_USER" default:"postgres"`
	DatabasePassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DatabaseName     string `envconfig:"DB_NAME" default:"blood_donation"`
	DatabaseSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	GeoBaseURL   string `envconfig:"GEO_BASE_URL" default:"http://localhost:5000"`
	GeoTimeoutMS int    `envconfig:"GEO_TIMEOUT_MS" default:"2000"`

	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxRetries      int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	OutboxRetryDelay   time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"5s"`
	OutboxMaxRetries   int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5"`
	OutboxRetention    time.Duration `envconfig:"OUTBOX_RETENTION" default:"168h"`
	CleanupInterval    time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"1h"`

	HealthPort string `envconfig:"HEALTH_PORT" default:":8081"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	MaxConcurrentLookups int `envconfig:"MAX_CONCURRENT_LOOKUPS" default:"8"`
}

func setupHealthCheck(addr string, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger.Level(logger.ParseLevel(cfg.LogLevel))}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, &appLogger.ZL)
	if err != nil {
		appLogger.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	m := metrics.NewMetrics("blood_donation", "worker")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	donorRepo := postgres.NewDonorRepository(db)
	bloodRepo := postgres.NewBloodRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Escalation needs the full matching pipeline to line up the next
	// candidate after a decline or no-answer.
	bloodSvc := bloodService.NewService(bloodRepo)
	eventSvc := eventService.NewService(outboxRepo, appLogger)
	oracle := geo.NewClient(config.GeoConfig{
		BaseURL:   cfg.GeoBaseURL,
		TimeoutMS: cfg.GeoTimeoutMS,
	}, appLogger)
	matchingSvc := matchingService.NewService(
		requestRepo,
		donorRepo,
		matchRepo,
		userRepo,
		bloodSvc,
		oracle,
		eventSvc,
		email.NewNoopService(),
		m,
		appLogger,
		cfg.MaxConcurrentLookups,
	)
	escalationSvc := escalationService.NewService(requestRepo, matchRepo, matchingSvc, m, appLogger)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:       cfg.OutboxBatchSize,
			PollInterval:    cfg.OutboxPollInterval,
			RetryAttempts:   cfg.OutboxRetries,
			RetryDelay:      cfg.OutboxRetryDelay,
			MaxRetries:      cfg.OutboxMaxRetries,
			RetentionPeriod: cfg.OutboxRetention,
		},
		appLogger,
		m,
	)
	consumer := internalWorker.NewEscalationConsumer(broker, escalationSvc, appLogger)

	setupHealthCheck(cfg.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil {
			appLogger.Error(err, "Escalation consumer stopped")
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := processor.Cleanup(ctx); err != nil {
					appLogger.Error(err, "Outbox cleanup failed")
				}
			}
		}
	}()

	wg.Wait()
}
