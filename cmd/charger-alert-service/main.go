package main

import (
	"fmt"
	"os"

	"charger-alert-service/internal/auth"
	"charger-alert-service/internal/client"
	"charger-alert-service/internal/config"
	"charger-alert-service/internal/db"
	"charger-alert-service/internal/dedup"
	"charger-alert-service/internal/eventbus"
	httphandler "charger-alert-service/internal/http"
	"charger-alert-service/internal/http/middleware"
	"charger-alert-service/internal/logger"
	"charger-alert-service/internal/notify"
	"charger-alert-service/internal/repository"
	"charger-alert-service/internal/service"
	"charger-alert-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	registrationRepo := repository.NewRegistrationRepository(database)
	auditRepo := repository.NewAuditRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)

	resolver, err := storage.NewResolver(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to init storage resolver")
	}

	recognizerClient := client.NewRecognizerClient(cfg)
	pushClient := client.NewPushClient(cfg)
	dispatcher := notify.NewDispatcher(pushClient, cfg.Push.Topic, appLogger)

	var guard service.DeliveryGuard
	if cfg.Redis.Addr != "" {
		guard = dedup.NewRedisGuard(cfg.Redis.Addr, cfg.Redis.DedupTTL)
		appLogger.Info().Str("addr", cfg.Redis.Addr).Msg("duplicate-delivery guard enabled")
	}

	alertService := service.NewAlertService(
		resolver,
		recognizerClient,
		registrationRepo,
		dispatcher,
		auditRepo,
		guard,
		cfg.Recognizer.Token,
		appLogger,
	)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, pushClient, cfg.Push.Topic, appLogger)

	// Event bus is optional: without it reports arrive over HTTP only.
	if cfg.Events.NATSUrl != "" {
		subscriber, err := eventbus.NewSubscriber(cfg.Events.NATSUrl, appLogger)
		if err != nil {
			appLogger.Warn().Err(err).Msg("event bus unavailable, continuing with HTTP ingest only")
		} else {
			defer subscriber.Close()
			if err := subscriber.Start(cfg.Events.Subject, cfg.Events.Queue, alertService); err != nil {
				appLogger.Warn().Err(err).Msg("failed to subscribe to report events")
			}
		}
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(alertService, subscriptionService, auditRepo, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	internalMiddleware := middleware.InternalToken(cfg.Ingest.InternalToken)
	router := httphandler.NewRouter(handler, authMiddleware, internalMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting charger alert service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
