package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/config"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/email"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/geo"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler"
	authHandler "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler/auth"
	bloodHandler "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler/blood"
	donorHandler "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler/donor"
	matchHandler "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler/match"
	postHandler "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler/post"
	requestHandler "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler/request"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/middleware"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository/postgres"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/router"
	authService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/auth"
	bloodService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/blood"
	donorService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/donor"
	eventService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/event"
	matchingService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/matching"
	postService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/post"
	requestService "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/request"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/auth"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/metrics"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("blood_donation", "api")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	donorRepo := postgres.NewDonorRepository(db)
	bloodRepo := postgres.NewBloodRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	postRepo := postgres.NewPostRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(0)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	donorSvc := donorService.NewService(donorRepo)
	bloodSvc := bloodService.NewService(bloodRepo)
	eventSvc := eventService.NewService(outboxRepo, appLogger)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	oracle := geo.NewClient(cfg.Geo, appLogger)
	matchingSvc := matchingService.NewService(
		requestRepo,
		donorRepo,
		matchRepo,
		userRepo,
		bloodSvc,
		oracle,
		eventSvc,
		emailSvc,
		m,
		appLogger,
		cfg.Matching.MaxConcurrentLookups,
	)
	requestSvc := requestService.NewService(requestRepo, eventSvc, appLogger)
	postSvc := postService.NewService(postRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		donorHandler.NewHandler(donorSvc),
		requestHandler.NewHandler(requestSvc, matchingSvc),
		matchHandler.NewHandler(matchingSvc),
		bloodHandler.NewHandler(bloodSvc),
		postHandler.NewHandler(postSvc),
		h,
		router.Config{
			RateLimitRPS:   50,
			RateLimitBurst: 100,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	appLogger.Info("API server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
