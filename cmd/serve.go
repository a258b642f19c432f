package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/Dosada05/padel-circuit/brackets"
	"github.com/Dosada05/padel-circuit/db"
	"github.com/Dosada05/padel-circuit/events"
	"github.com/Dosada05/padel-circuit/handlers"
	"github.com/Dosada05/padel-circuit/metrics"
	"github.com/Dosada05/padel-circuit/middleware"
	"github.com/Dosada05/padel-circuit/repositories"
	api "github.com/Dosada05/padel-circuit/routes"
	"github.com/Dosada05/padel-circuit/services"
	"github.com/Dosada05/padel-circuit/storage"
	"github.com/Dosada05/padel-circuit/zones"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP API",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Int("season", cfg.CurrentSeason))

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn, logger); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheus(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Публикация итогов турнира: NATS и R2 подключаются, только если настроены
	var publisher services.Publisher
	if cfg.NATSURL != "" {
		natsPublisher, err := events.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return err
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS publisher connected", slog.String("subject", cfg.NATSSubject))
	}

	var reports services.ReportStore
	if cfg.R2Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		reports = storage.NewReportStore(uploader)
		logger.Info("Cloudflare R2 report storage initialized", slog.String("bucket", cfg.R2BucketName))
	}

	store := newStore(dbConn)
	deps := services.Deps{
		Tx:       repositories.NewTransactor(dbConn),
		Logger:   logger,
		Metrics:  recorder,
		Notifier: wsHub,
	}

	tournamentService := services.NewTournamentService(store, deps, cfg.CurrentSeason)
	competitorService := services.NewCompetitorService(store, deps)
	pairService := services.NewPairService(store, deps)
	zoneService := services.NewZoneService(store, deps, cfg.ZoneCapacity, zones.NewRandomizer)
	bracketService := services.NewBracketService(store, deps)
	closureService := services.NewClosureService(store, deps, publisher, reports)
	pointsService := services.NewPointsService(store, deps)
	rankingService := services.NewRankingService(store, deps)
	logger.Info("Services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService, closureService),
		Competitor: handlers.NewCompetitorHandler(competitorService),
		Pair:       handlers.NewPairHandler(pairService),
		Zone:       handlers.NewZoneHandler(zoneService),
		Match:      handlers.NewMatchHandler(zoneService, bracketService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		Points:     handlers.NewPointsHandler(pointsService, rankingService, cfg.CurrentSeason),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.AllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		RateLimiter:    middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		AllowedOrigins: cfg.AllowedOrigins,
		Gatherer:       registry,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
