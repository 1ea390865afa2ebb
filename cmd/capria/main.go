package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/capria-app/capria/internal/activities"
	"github.com/capria-app/capria/internal/albums"
	"github.com/capria-app/capria/internal/app"
	"github.com/capria-app/capria/internal/audit"
	"github.com/capria-app/capria/internal/auth"
	"github.com/capria-app/capria/internal/caregivers"
	"github.com/capria-app/capria/internal/diary"
	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/impersonation"
	"github.com/capria-app/capria/internal/observability"
	"github.com/capria-app/capria/internal/permissions"
	"github.com/capria-app/capria/internal/platform/cache"
	"github.com/capria-app/capria/internal/platform/db"
	"github.com/capria-app/capria/internal/rbac"
	"github.com/capria-app/capria/internal/roles"
	"github.com/capria-app/capria/internal/shared"
	"github.com/capria-app/capria/internal/users"
	"github.com/capria-app/capria/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "capria_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	identityRepo := identity.NewRepository(dbpool)
	resolver := identity.NewResolver(identityRepo, logger)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, jobClient, logger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, auditLogger)

	overlay := impersonation.NewOverlay(resolver, auditLogger, metrics, logger)
	impersonationHandler := impersonation.NewHandler(logger, overlay)

	evaluator := permissions.NewEvaluator(permissions.NewRepository(dbpool), metrics, logger)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(dbpool)), rbacMiddleware)
	rolesService := roles.NewService(roles.NewRepository(dbpool), auditLogger, logger)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)
	caregiversService := caregivers.NewService(caregivers.NewRepository(dbpool), auditLogger, logger)
	caregiversHandler := caregivers.NewHandler(logger, caregiversService, evaluator, rbacMiddleware)
	activitiesHandler := activities.NewHandler(logger, activities.NewService(activities.NewRepository(dbpool), evaluator), rbacMiddleware)
	diaryHandler := diary.NewHandler(logger, diary.NewService(diary.NewRepository(dbpool)), rbacMiddleware)
	albumsHandler := albums.NewHandler(logger, albums.NewService(albums.NewRepository(dbpool)), rbacMiddleware)
	auditService := audit.NewService(logger, audit.NewPGRepository(dbpool))
	auditHandler := audit.NewHandler(logger, auditService, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthService:          authService,
		Resolver:             resolver,
		AuthHandler:          authHandler,
		ImpersonationHandler: impersonationHandler,
		UsersHandler:         usersHandler,
		RolesHandler:         rolesHandler,
		CaregiversHandler:    caregiversHandler,
		ActivitiesHandler:    activitiesHandler,
		DiaryHandler:         diaryHandler,
		AlbumsHandler:        albumsHandler,
		AuditHandler:         auditHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
