package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/gateway"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/generation"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/web"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/internal/workspace"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/config"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/database"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/logger"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/repository"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	if err := cfg.RequireGeneration(); err != nil {
		logger.WithError(err).Fatal("No generation mode configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := monitoring.NewMetricsCollector(cfg.Monitoring.ServiceName)
	health := monitoring.NewHealthManager(cfg.Monitoring.ServiceName, cfg.Monitoring.ServiceVersion)

	tracing, err := monitoring.NewTracingManager(ctx, monitoring.TracingConfig{
		ServiceName:    cfg.Monitoring.ServiceName,
		ServiceVersion: cfg.Monitoring.ServiceVersion,
		Environment:    cfg.Monitoring.Environment,
		Endpoint:       cfg.Monitoring.TracingEndpoint,
		Insecure:       cfg.Monitoring.TracingInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}

	serviceOpts := []generation.ServiceOption{
		generation.WithMetrics(metrics),
		generation.WithTracing(tracing),
	}

	// The audit log is optional
	var db *database.DB
	db, err = database.NewConnection(ctx, &cfg.Database, logger)
	switch {
	case errors.Is(err, database.ErrNoURL):
		logger.Info("DATABASE_URL not set, generation audit log disabled")
	case err != nil:
		logger.WithError(err).Fatal("Failed to connect to database")
	default:
		if err := db.CreateSchema(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to create audit schema")
		}
		health.RegisterChecker("database", monitoring.NewDatabaseHealthChecker(db.DB))
		serviceOpts = append(serviceOpts, generation.WithRecorder(repository.NewGenerationLogRepository(db.DB, logger)))
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout()}
	gatewayOpts := []gateway.Option{
		gateway.WithMetrics(metrics),
		gateway.WithTracing(tracing),
		gateway.WithHealth(health),
	}

	// The proxy endpoint always calls the provider directly and exists only
	// when this server holds the credential
	if cfg.HasCredential() {
		direct, err := generation.NewDirectClient(cfg, httpClient)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create provider client")
		}
		gatewayOpts = append(gatewayOpts, gateway.WithGenerator(
			generation.NewService(direct, generation.ModeDirect, logger, serviceOpts...),
		))
	} else {
		logger.Info("No provider credential, /api/generate disabled")
	}

	if cfg.RateLimit.Enabled {
		rateLimiter := gateway.NewRateLimiter(cfg.RateLimit.RequestsPerMin, time.Minute)
		rateLimiter.StartCleanup(ctx, time.Duration(cfg.RateLimit.CleanupInterval)*time.Second)
		gatewayOpts = append(gatewayOpts, gateway.WithRateLimiter(rateLimiter))
	}

	gatewayService := gateway.NewService(cfg, logger, gatewayOpts...)

	// The workspace UI picks its mode the same way any client does
	client, mode, err := generation.NewClient(cfg, httpClient, generation.WithProxyTracing(tracing))
	if err != nil {
		logger.WithError(err).Fatal("Failed to create generation client")
	}
	if mode == generation.ModeProxied {
		health.RegisterChecker("backend", monitoring.NewHTTPHealthChecker(cfg.BackendURL+cfg.Monitoring.HealthPath, 5*time.Second))
	}
	health.RegisterChecker("generation", monitoring.CheckFunc(func(context.Context) monitoring.HealthCheck {
		return monitoring.HealthCheck{
			Name:   "generation",
			Status: monitoring.HealthStatusHealthy,
			Details: map[string]interface{}{
				"mode":           string(mode),
				"proxy_endpoint": cfg.HasCredential(),
			},
		}
	}))
	uiGenerator := generation.NewService(client, mode, logger, serviceOpts...)

	idleTTL := time.Duration(cfg.Session.IdleTTL) * time.Second
	store := workspace.NewStore(func() *workspace.App {
		return workspace.New(uiGenerator, nil, workspace.WithMetrics(metrics))
	}, idleTTL, metrics, workspace.WithMaxWorkspaces(cfg.Session.MaxWorkspaces))
	store.StartCleanup(ctx, time.Duration(cfg.Session.CleanupInterval)*time.Second)

	web.NewHandler(store, logger, web.WithCookieMaxAge(idleTTL)).Register(gatewayService.Router())

	logger.WithField("mode", mode).Info("Generation mode selected")

	// Start the server in a goroutine
	go func() {
		if err := gatewayService.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := gatewayService.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shutdown server gracefully")
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to flush traces")
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}

	logger.Info("Server stopped")
}
