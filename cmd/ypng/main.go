// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ypng-go/internal/auth"
	"github.com/olegiv/ypng-go/internal/cache"
	"github.com/olegiv/ypng-go/internal/config"
	"github.com/olegiv/ypng-go/internal/derive"
	"github.com/olegiv/ypng-go/internal/geoip"
	"github.com/olegiv/ypng-go/internal/handler/api"
	"github.com/olegiv/ypng-go/internal/imaging"
	"github.com/olegiv/ypng-go/internal/logging"
	"github.com/olegiv/ypng-go/internal/middleware"
	"github.com/olegiv/ypng-go/internal/notify"
	"github.com/olegiv/ypng-go/internal/scheduler"
	"github.com/olegiv/ypng-go/internal/service"
	"github.com/olegiv/ypng-go/internal/store"
	"github.com/olegiv/ypng-go/internal/util"
	"github.com/olegiv/ypng-go/internal/version"
	"github.com/olegiv/ypng-go/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const uploadsMaxAge = 30 * 24 * 60 * 60 // 30 days

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ypng - membership and events backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_JWT_SECRET        Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_DB_PATH           SQLite database path (default: ./data/ypng.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_UPLOADS_DIR       Media upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  YPNG_SIGNAL_ENDPOINT   URL receiving notification and platform signals (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("ypng %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also land in the activity log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger = slog.New(logging.NewActivityLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	cacheConfig := cache.CacheConfig{
		Type:             cache.CacheBackendMemory,
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = cache.CacheBackendRedis
	}
	cached, err := cache.NewCacheWithInfo(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cached.Cache.Close() }()
	slog.Info("cache initialized", "backend", cached.BackendType, "fallback", cached.IsFallback)

	if cfg.SignalsEnabled() && !cfg.IsDevelopment() {
		if err := util.ValidateEndpointURL(cfg.SignalEndpoint); err != nil {
			return fmt.Errorf("YPNG_SIGNAL_ENDPOINT rejected: %w", err)
		}
	}
	signals := webhook.NewDispatcher(db, logger, webhook.Config{
		Workers:               cfg.SignalWorkers,
		Endpoint:              cfg.SignalEndpoint,
		Secret:                cfg.SignalSecret,
		AllowPrivateEndpoints: cfg.IsDevelopment(),
	})
	signals.Start(ctx)
	defer signals.Stop()
	if !cfg.SignalsEnabled() {
		slog.Info("no signal endpoint configured, signals are recorded only")
	}

	services := service.New(service.Deps{
		DB:        db,
		Logger:    logger,
		Derive:    derive.New(),
		Notifier:  notify.NewNotifier(signals),
		Syncer:    notify.NewSyncer(signals),
		Cache:     cached.Cache,
		CacheTTL:  time.Duration(cfg.CacheTTL) * time.Second,
		Processor: imaging.NewProcessor(cfg.UploadsDir),
	})

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("initializing token issuer: %w", err)
	}

	clients, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, login countries will not be recorded", "error", err)
	}
	defer func() { _ = clients.Close() }()

	sched := scheduler.New(db, logger)
	if err := sched.Add(scheduler.CoreJobs(services, signals, scheduler.Retention{
		Activity:   time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour,
		Deliveries: time.Duration(cfg.SignalRetentionDays) * 24 * time.Hour,
	})...); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}
	if cfg.GeoIPDBPath != "" {
		if err := sched.Add(scheduler.GeoIPReloadJob(clients)); err != nil {
			return fmt.Errorf("registering geoip job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Config{
		DB:       db,
		Services: services,
		Tokens:   tokens,
		Jobs:     sched.Registry(),
		GeoIP:    clients,
		Logger:   logger,
		Version:  versionInfo,
	})
	createLimiter := middleware.NewRateLimiter("create", cfg.RegistrationRate, cfg.RegistrationBurst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Mount("/api/v1", middleware.Timeout(30*time.Second)(apiHandler.Routes(createLimiter)))
	r.Handle("/uploads/*", middleware.Uploads("/uploads/", cfg.UploadsDir, uploadsMaxAge))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Endpoint not found", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
