package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avpro-events/avpro-backend/api/routes"
	article "github.com/avpro-events/avpro-backend/internal/articles"
	"github.com/avpro-events/avpro-backend/internal/assistant"
	"github.com/avpro-events/avpro-backend/internal/availability"
	"github.com/avpro-events/avpro-backend/internal/dashboard"
	event "github.com/avpro-events/avpro-backend/internal/events"
	"github.com/avpro-events/avpro-backend/pkg/config"
	"github.com/avpro-events/avpro-backend/pkg/db"
	"github.com/avpro-events/avpro-backend/pkg/logger"
	"github.com/avpro-events/avpro-backend/pkg/metrics"
	"github.com/avpro-events/avpro-backend/pkg/migrate"
	"github.com/avpro-events/avpro-backend/pkg/openai"
	"github.com/avpro-events/avpro-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ivaRate, err := cfg.Ledger.IVARate()
	if err != nil {
		logg.Error(context.Background(), "invalid iva rate", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	articleRepo := article.NewRepository(dbClient.DB())
	articleService, err := article.NewService(articleRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create article service", err)
		os.Exit(1)
	}

	eventRepo := event.NewRepository(dbClient.DB())
	eventService, err := event.NewService(eventRepo, dbClient, ivaRate, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(articleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	dashboardRepo := dashboard.NewRepository(dbClient.DB())
	dashboardService, err := dashboard.NewService(dashboardRepo, redisClient, cfg.Ledger.LowStockThreshold, cfg.Ledger.TopArticlesLimit)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	var chatClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		chatClient, err = openai.NewClient(cfg.OpenAI.APIKey,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.Model),
			openai.WithTimeout(cfg.OpenAI.Timeout),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create openai client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "no openai api key set, assistant runs in unavailable mode")
	}

	assistantService, err := newAssistantService(chatClient, articleRepo, dashboardRepo, dashboardService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create assistant service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	handler := routes.NewRouter(routes.Dependencies{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Metrics:      ledgerMetrics,
		Registry:     registry,
		Articles:     articleService,
		Events:       eventService,
		Availability: availabilityService,
		Dashboard:    dashboardService,
		Assistant:    assistantService,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

// newAssistantService keeps the nil client typed so the assistant falls back
// to its unavailable answer instead of panicking on a nil interface.
func newAssistantService(chatClient *openai.Client, articles article.Repository, events dashboard.Repository, summaries dashboard.Service, logg *logger.Logger) (assistant.Service, error) {
	if chatClient == nil {
		return assistant.NewService(nil, articles, events, summaries, logg)
	}
	return assistant.NewService(chatClient, articles, events, summaries, logg)
}
