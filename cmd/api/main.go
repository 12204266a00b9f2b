// Package main is the entrypoint for the Canteen API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/canteen/canteen/internal/auth"
	"github.com/canteen/canteen/internal/cache"
	"github.com/canteen/canteen/internal/config"
	"github.com/canteen/canteen/internal/handler"
	"github.com/canteen/canteen/internal/metrics"
	"github.com/canteen/canteen/internal/repository"
	"github.com/canteen/canteen/internal/server"
	"github.com/canteen/canteen/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := repo.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Redis is optional: without it rate limits are kept per process.
	var (
		cacheClient *cache.Cache
		limiter     cache.Limiter = cache.NewMemoryLimiter()
		cacheHealth handler.HealthChecker
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		limiter = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Info("REDIS_URL not set, using in-process rate limiting")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to initialize token service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var (
		recorder   metrics.Recorder = metrics.NewNoop()
		prometheus *metrics.PrometheusRecorder
	)
	if cfg.MetricsEnabled {
		prometheus = metrics.NewPrometheus()
		recorder = prometheus
	}

	loc := cfg.Location()

	allergenicService := service.NewAllergenicService(repo, recorder)
	mealService := service.NewMealService(repo, repo, recorder)
	menuService := service.NewMenuService(repo, mealService, loc, recorder)
	userService := service.NewUserService(repo, tokens, recorder)

	r := setupRouter(routerDeps{
		cfg:         cfg,
		logger:      logger,
		root:        handler.New(version),
		health:      handler.NewHealthHandler(repo, cacheHealth),
		allergenics: handler.NewAllergenicHandler(allergenicService, logger),
		meals:       handler.NewMealHandler(mealService, logger),
		menus:       handler.NewMenuHandler(menuService, loc, logger),
		users: handler.NewUserHandler(userService, handler.SessionCookie{
			Name:   cfg.SessionCookieName,
			Secure: cfg.CookieSecure(),
			TTL:    cfg.JWTTTL,
		}, logger),
		verifier:   tokens,
		limiter:    limiter,
		recorder:   recorder,
		prometheus: prometheus,
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("database", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"timezone", loc.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "canteen-api")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
