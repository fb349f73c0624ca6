// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/elyterrax/marketplace-api/internal/admin"
	"github.com/elyterrax/marketplace-api/internal/audit"
	"github.com/elyterrax/marketplace-api/internal/auth"
	"github.com/elyterrax/marketplace-api/internal/config"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/deal"
	"github.com/elyterrax/marketplace-api/internal/document"
	"github.com/elyterrax/marketplace-api/internal/health"
	"github.com/elyterrax/marketplace-api/internal/lead"
	"github.com/elyterrax/marketplace-api/internal/middleware"
	"github.com/elyterrax/marketplace-api/internal/project"
	"github.com/elyterrax/marketplace-api/internal/server"
	"github.com/elyterrax/marketplace-api/internal/storage"
	"github.com/elyterrax/marketplace-api/internal/user"
	"github.com/elyterrax/marketplace-api/migrations"
)

const (
	drainDelay           = 5 * time.Second
	tokenCleanupInterval = time.Hour
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	core.SetPasswordParams(cfg.Password)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB, migrations.FS, logger); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	blobs, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("blob store configured",
		"bucket", cfg.Storage.Bucket,
		"endpoint", cfg.Storage.Endpoint,
	)

	if !cfg.IsProduction() {
		created, keyErr := auth.EnsureKeyPair(cfg.JWT)
		if keyErr != nil {
			return keyErr
		}
		if created {
			logger.Warn("generated development JWT signing keys",
				"private_key_path", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	auditRepo := audit.NewRepository(db.DB)
	auditSink := audit.NewSink(cfg.Audit, auditRepo, logger)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		core.NewRevocationStore(redis.Client),
	)
	authHandler := auth.NewHandler(authSvc)

	projectRepo := project.NewRepository(db.DB)
	projectSvc := project.NewService(projectRepo, blobs, logger)
	projectHandler := project.NewHandler(projectSvc)

	documentRepo := document.NewRepository(db.DB)
	documentSvc := document.NewService(
		documentRepo,
		projectRepo,
		blobs,
		storage.NewPolicy(cfg.Documents),
		cfg.Storage.SignedURLExpiry,
		logger,
	)
	documentHandler := document.NewHandler(documentSvc, cfg.Documents.MaxSizeBytes())

	leadRepo := lead.NewRepository(db.DB)
	leadSvc := lead.NewService(leadRepo, userSvc, projectRepo, logger)
	leadHandler := lead.NewHandler(leadSvc)

	dealSvc := deal.NewService(deal.NewRepository(db.DB), leadRepo, logger)
	dealHandler := deal.NewHandler(dealSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db, Critical: true},
		health.Dependency{Name: "redis", Checker: redis, Critical: true},
		health.Dependency{Name: "storage", Checker: blobs},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		AuditLog:   auditRepo,
		AuditQueue: auditSink,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.Audit(auditSink))
	limiter := middleware.NewLimiter(redis.Client, logger)
	router.Use(limiter.Middleware(middleware.PerClientIP(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Burst,
		cfg.RateLimit.Window,
	)))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	tiered := limiter.Middleware(middleware.PerViewerTier(middleware.DefaultTiers))
	authenticated := chainMiddleware(
		middleware.Authenticator(authSvc),
		middleware.LoadViewer(userSvc),
		tiered,
	)
	optional := chainMiddleware(
		middleware.OptionalAuth(authSvc),
		middleware.LoadViewer(userSvc),
		tiered,
	)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticated)

		userHandler.RegisterRoutes(r, authenticated)
		userHandler.RegisterAdminRoutes(r, authenticated, adminOnly)

		projectHandler.RegisterRoutes(r, authenticated, optional)
		projectHandler.RegisterAdminRoutes(r, authenticated, adminOnly)
		documentHandler.RegisterRoutes(r, authenticated, optional)
		leadHandler.RegisterRoutes(r, authenticated)
		dealHandler.RegisterAdminRoutes(r, authenticated, adminOnly)

		adminHandler.RegisterRoutes(r, authenticated, adminOnly)
	})

	g, gctx := errgroup.WithContext(ctx)

	sinkCtx, stopSink := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSink()

	g.Go(func() error {
		return auditSink.Run(sinkCtx)
	})

	g.Go(srv.Start)

	g.Go(func() error {
		return authSvc.RunTokenCleanup(gctx, tokenCleanupInterval, logger)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		defer stopSink()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
		)
		defer cancel()

		return srv.Shutdown(shutdownCtx, drainDelay)
	})

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if telemetry != nil {
		if err := telemetry.Shutdown(closeCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return runErr
}

func chainMiddleware(
	mws ...func(http.Handler) http.Handler,
) func(http.Handler) http.Handler {
	return chi.Chain(mws...).Handler
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
