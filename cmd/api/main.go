// Package main is the entrypoint for the ClassFund API server.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/classfund/classfund/internal/audit"
	"github.com/classfund/classfund/internal/cache"
	"github.com/classfund/classfund/internal/config"
	"github.com/classfund/classfund/internal/handler"
	"github.com/classfund/classfund/internal/metrics"
	"github.com/classfund/classfund/internal/middleware"
	"github.com/classfund/classfund/internal/repository"
	"github.com/classfund/classfund/internal/server"
	"github.com/classfund/classfund/internal/service"
)

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
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// The audit trail writes through database/sql with the pq driver,
	// separate from the pgx pool serving request reads and writes.
	auditDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open audit database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer auditDB.Close()

	recorder := metrics.NewInMemory()

	auditPublisher := audit.NewPublisher(cacheClient.Client(), logger, recorder)
	auditRepo := audit.NewRepository(auditDB)
	auditWorker := audit.NewWorker(cacheClient.Client(), auditRepo, logger, uuid.New().String(), recorder)

	identityService := service.NewIdentityService(repo, cacheClient, cfg.SessionTTL, recorder)
	donationService := service.NewDonationService(repo, auditPublisher, logger, recorder)
	fundingService := service.NewFundingService(repo, cacheClient, recorder)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(identityService, logger, cfg.SessionTTL, cfg.IsProduction())
	donationHandler := handler.NewDonationHandler(donationService, logger)
	fundingHandler := handler.NewFundingHandler(fundingService, logger)

	r := setupRouter(routerDeps{
		health:   healthHandler,
		metrics:  metricsHandler,
		auth:     authHandler,
		donation: donationHandler,
		funding:  fundingHandler,
		sessions: identityService,
		cache:    cacheClient,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Run the audit worker for the lifetime of the server; shutdown
	// drains in-flight batches before the Redis client closes.
	workerCtx, cancelWorker := context.WithCancel(ctx)
	go func() {
		if err := auditWorker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("audit worker stopped", "error", err)
		}
	}()
	srv.OnShutdown("audit_worker", func(shutdownCtx context.Context) error {
		cancelWorker()
		return auditWorker.Shutdown(shutdownCtx)
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
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

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	auth     *handler.AuthHandler
	donation *handler.DonationHandler
	funding  *handler.FundingHandler
	sessions middleware.SessionReader
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)
	r.Get("/", handler.Hello)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Cache:   deps.cache,
		Enabled: deps.cfg.RateLimitEnabled,
		RPS:     deps.cfg.RateLimitRPS,
		Burst:   deps.cfg.RateLimitBurst,
	}

	authCfg := middleware.AuthConfig{
		Logger:   deps.logger,
		Sessions: deps.sessions,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/register", deps.auth.Register)
			r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/login", deps.auth.Login)
			r.Post("/logout", deps.auth.Logout)
		})

		r.Route("/donations", func(r chi.Router) {
			r.Use(middleware.RequireSession(authCfg))
			r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/", deps.donation.Create)
			r.Get("/{did}", deps.donation.Get)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", deps.funding.List)
			r.Get("/{pid}/funding", deps.funding.Get)
		})
	})

	// Rendered project page.
	r.Get("/projects/{pid}", deps.funding.Page)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
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
