// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
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

	"github.com/olegiv/festivo-go/internal/cache"
	"github.com/olegiv/festivo-go/internal/config"
	"github.com/olegiv/festivo-go/internal/geoip"
	"github.com/olegiv/festivo-go/internal/handler"
	"github.com/olegiv/festivo-go/internal/logging"
	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/scheduler"
	"github.com/olegiv/festivo-go/internal/service"
	"github.com/olegiv/festivo-go/internal/session"
	"github.com/olegiv/festivo-go/internal/store"
	"github.com/olegiv/festivo-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "festivo - festival collection and expense ledger API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_DB_PATH           SQLite database path (default: ./data/festivo.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_DB_DRIVER         sqlite (pure Go) or sqlite3 (cgo) (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_REDIS_URL         Redis URL for shared festival code lookups (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_GEOIP_DB_PATH     GeoLite2 country database for access logs (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FESTIVO_LOGIN_THROTTLE    Throttle failed unlocks per festival, tier and IP (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func run(info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath, "driver", cfg.DBDriver)
	dbOpts := store.DefaultOptions()
	dbOpts.Driver = cfg.DBDriver
	db, err := store.Open(cfg.DBPath, dbOpts)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	applied, err := store.Migrate(context.Background(), db)
	if err != nil {
		return err
	}
	slog.Info("database ready", "migrations_applied", applied)

	// WARN and ERROR records are also written to the system event log.
	logger = slog.New(logging.NewEventLogHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}), db))
	slog.SetDefault(logger)

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.DefaultTTL = cfg.CacheDefaultTTL()
	cacheCfg.MaxSize = cfg.CacheMaxSize
	codeCache := cache.New(cacheCfg, logger)
	defer func() { _ = codeCache.Close() }()

	var geo *geoip.Lookup
	if cfg.GeoIPEnabled() {
		geo, err = geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("geoip database unavailable, countries will not be recorded",
				"category", model.EventCategorySystem, "path", cfg.GeoIPDBPath, "error", err)
			geo = nil
		} else {
			defer func() { _ = geo.Close() }()
		}
	}

	svc := service.New(service.Options{
		Store:     store.NewStore(db),
		Codes:     cache.NewFestivalCodes(codeCache, cfg.CacheDefaultTTL()),
		GeoIP:     geo,
		DigestKey: cfg.DigestKey(),
		Logger:    logger,
	})

	retention := scheduler.New(store.New(db), scheduler.RetentionConfig{
		Schedule:        cfg.RetentionSchedule,
		EventRetention:  cfg.EventRetention,
		AccessRetention: cfg.AccessLogRetention,
	}, logger)
	if err := retention.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer retention.Stop()

	sessionManager := session.New(db, cfg.IsDevelopment(), cfg.SessionLifetime)

	loginCfg := middleware.DefaultLoginProtectionConfig()
	loginCfg.Enabled = cfg.LoginThrottle
	loginCfg.MaxFailedAttempts = cfg.LoginMaxAttempts
	loginCfg.LockoutDuration = cfg.LoginLockout
	loginProtection := middleware.NewLoginProtection(loginCfg)
	defer loginProtection.Stop()
	if loginProtection.Enabled() {
		slog.Info("unlock throttling enabled", "max_attempts", cfg.LoginMaxAttempts, "lockout", cfg.LoginLockout)
	}

	api := handler.New(svc, session.NewManagerStore(sessionManager), loginProtection, logger)
	health := handler.NewHealthHandler(db, codeCache, info)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey(), cfg.IsDevelopment(), cfg.ServerPort)))
		if cfg.APIRateLimit > 0 {
			r.Use(middleware.NewGlobalRateLimiter(cfg.APIRateLimit, cfg.APIRateLimitBurst).Middleware())
		}
		api.Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
