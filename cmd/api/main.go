// Package main is the entrypoint for the userprojects API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/userprojects/userprojects/internal/cache"
	"github.com/userprojects/userprojects/internal/config"
	"github.com/userprojects/userprojects/internal/handler"
	"github.com/userprojects/userprojects/internal/metrics"
	"github.com/userprojects/userprojects/internal/middleware"
	"github.com/userprojects/userprojects/internal/repository"
	"github.com/userprojects/userprojects/internal/server"
	"github.com/userprojects/userprojects/internal/service"
)

func main() {
	ctx := context.Background()

	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	dsn := cfg.Database.DSN()
	connector, err := repository.New(cfg.Database)
	if err != nil {
		logger.Error("failed to configure database",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", sanitizeError(err, dsn)),
		)
		os.Exit(1)
	}

	// Connections are opened per request; this only verifies reachability.
	if err := connector.Ping(ctx); err != nil {
		logger.Warn("database not reachable at startup",
			slog.String("driver", cfg.Database.Driver),
			slog.String("dsn", redactDSN(cfg.Database.Driver, dsn)),
			slog.String("error", sanitizeError(err, dsn)),
		)
	} else {
		logger.Info("database reachable",
			slog.String("driver", cfg.Database.Driver),
			slog.String("dsn", redactDSN(cfg.Database.Driver, dsn)),
		)
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	var exporter handler.MetricsExporter
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		recorder = prom
		exporter = prom
	}

	svc := service.NewUserProjectsService(connector, service.Options{
		QueryTimeout: cfg.Database.QueryTimeout,
		Metrics:      recorder,
		Logger:       logger,
	})

	deps := server.RouterDeps{
		Logger:    logger,
		Connector: connector,
		Service:   svc,
		Exporter:  exporter,
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Metrics: recorder,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		},
		Security: middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
			MaxAge:         middleware.DefaultCORSConfig().MaxAge,
		},
		PrintPanicStack: cfg.IsDevelopment(),
	}

	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")

		deps.Cache = cacheClient
		deps.RateLimit.Limiter = cacheClient
		deps.RateLimit.Enabled = cfg.RateLimitActive()
	}

	srv := server.New(server.NewRouter(deps), server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"driver", cfg.Database.Driver,
		"rate_limit", deps.RateLimit.Enabled,
		"metrics", cfg.MetricsEnabled,
	)

	if err := srv.Run(ctx); err != nil {
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

	logger := slog.New(h).With("service", handler.ServiceName)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactDSN strips the password from a datastore DSN for logging.
func redactDSN(driver, dsn string) string {
	if driver != config.DriverMySQL || strings.Contains(dsn, "://") {
		return redactURL(dsn)
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "[redacted]"
	}
	if parsed.Passwd != "" {
		parsed.Passwd = "redacted"
	}
	return parsed.FormatDSN()
}

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
		msg = strings.ReplaceAll(msg, secret, "[redacted]")
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
