package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/api"
	"github.com/dealflow-studio/engine/internal/api/handlers"
	mw "github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/api/validators"
	"github.com/dealflow-studio/engine/internal/identity"
	"github.com/dealflow-studio/engine/internal/migrations"
	"github.com/dealflow-studio/engine/internal/repository"
	"github.com/dealflow-studio/engine/internal/services"
	"github.com/dealflow-studio/engine/pkg/config"
	"github.com/dealflow-studio/engine/pkg/database"
	"github.com/dealflow-studio/engine/pkg/logger"
	"github.com/dealflow-studio/engine/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting Dealflow Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("version", version),
		zap.String("auth_mode", cfg.AuthMode),
	)

	if err := telemetry.Init(cfg.SentryDSN, cfg.AppEnv, version); err != nil {
		log.Warn("Sentry disabled", zap.Error(err))
	}
	defer telemetry.Flush(2 * time.Second)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{Verbose: cfg.IsDevelopment()})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.DBAutoMigrate {
		if err := migrations.Run(db); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Migrations applied")
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		log.Fatal("Failed to configure identity provider", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := mw.NewMetrics(reg)
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	var limiter *mw.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = mw.NewRateLimiter(cfg.RateLimitRPS, max(cfg.RateLimitBurst, 1))
		defer limiter.Stop()
	}

	router := api.NewRouter(buildDependencies(db, resolver, cfg, limiter, metrics, reg))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newResolver(cfg *config.Config) (identity.Resolver, error) {
	switch cfg.AuthMode {
	case "gotrue":
		return identity.NewGoTrueResolver(cfg.AuthURL, cfg.AuthAPIKey, cfg.AuthCacheTTL, nil), nil
	case "jwt":
		return identity.NewJWTResolver([]byte(cfg.AuthJWTSecret), "authenticated"), nil
	default:
		return nil, errors.New("unknown AUTH_MODE " + cfg.AuthMode)
	}
}

func buildDependencies(db *gorm.DB, resolver identity.Resolver, cfg *config.Config, limiter *mw.RateLimiter, metrics *mw.Metrics, reg *prometheus.Registry) api.Dependencies {
	v := validators.New()

	pipelineRepo := repository.NewPipelineRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	pipelineSvc := services.NewPipelineService(pipelineRepo)
	companySvc := services.NewCompanyService(pipelineRepo, companyRepo)
	analysisSvc := services.NewAnalysisService(companySvc, analysisRepo, services.RandomScorer)
	settingsSvc := services.NewSettingsService(profileRepo)

	return api.Dependencies{
		Resolver:         resolver,
		PipelinesHandler: handlers.NewPipelinesHandler(pipelineSvc, v),
		CompaniesHandler: handlers.NewCompaniesHandler(companySvc, v),
		AnalysisHandler:  handlers.NewAnalysisHandler(analysisSvc, v),
		SettingsHandler:  handlers.NewSettingsHandler(settingsSvc, v),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
		}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		RateLimiter:        limiter,
		Metrics:            metrics,
		Gatherer:           reg,
	}
}
