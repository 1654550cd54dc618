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

	"github.com/lexora-legal/lexora/internal/app"
	"github.com/lexora-legal/lexora/internal/approvals"
	"github.com/lexora-legal/lexora/internal/auth"
	"github.com/lexora-legal/lexora/internal/billing"
	"github.com/lexora-legal/lexora/internal/documents"
	"github.com/lexora-legal/lexora/internal/drafting"
	"github.com/lexora-legal/lexora/internal/matters"
	"github.com/lexora-legal/lexora/internal/notifications"
	"github.com/lexora-legal/lexora/internal/observability"
	"github.com/lexora-legal/lexora/internal/platform/cache"
	"github.com/lexora-legal/lexora/internal/platform/db"
	"github.com/lexora-legal/lexora/internal/rbac"
	"github.com/lexora-legal/lexora/internal/realtime"
	"github.com/lexora-legal/lexora/internal/shared"
	"github.com/lexora-legal/lexora/internal/tenancy"
	"github.com/lexora-legal/lexora/jobs"
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

	cache.Configure(cfg.RedisAddr)
	redisClient, err := cache.Shared(ctx)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := cache.Shutdown(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "lexora_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()
	publisher := realtime.NewPublisher(redisClient, logger)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	authGate := auth.Gate{Service: authService, Logger: logger}

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	tenancyService := tenancy.NewService(tenancy.NewRepository(dbpool), rbacService, logger)
	rbacMiddleware := rbac.Middleware{
		Service:  rbacService,
		Resolver: tenancyService,
		Logger:   logger,
		Metrics:  metrics,
	}

	tenancyHandler := tenancy.NewHandler(logger, tenancyService, rbacMiddleware)
	rolesHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	mattersService := matters.NewService(matters.NewRepository(dbpool), publisher)
	mattersHandler := matters.NewHandler(logger, mattersService, rbacMiddleware)

	var store documents.ObjectStore
	if cfg.ObjectStorageConfigured() {
		s3store, err := documents.NewS3Store(ctx, documents.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			logger.Error("init object storage", slog.Any("error", err))
			os.Exit(1)
		}
		store = s3store
	} else {
		logger.Warn("object storage not configured, document content disabled")
	}
	documentsService := documents.NewService(documents.NewRepository(dbpool), store, publisher)
	documentsHandler := documents.NewHandler(logger, documentsService, rbacMiddleware)

	notificationsService := notifications.NewService(notifications.NewRepository(dbpool), publisher, jobsClient, logger)
	notificationsHandler := notifications.NewHandler(logger, notificationsService, rbacMiddleware)

	approvalsService := approvals.NewService(approvals.NewRepository(dbpool), publisher, notificationsService, logger)
	approvalsHandler := approvals.NewHandler(logger, approvalsService, rbacMiddleware)

	billingService := billing.NewService(billing.NewRepository(dbpool), publisher)
	billingHandler := billing.NewHandler(logger, billingService, rbacMiddleware)

	draftingService := drafting.NewService(drafting.NewRepository(dbpool), jobsClient, logger)
	draftingHandler := drafting.NewHandler(logger, draftingService, rbacMiddleware)

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
		AuthGate:             authGate,
		AuthHandler:          authHandler,
		TenancyHandler:       tenancyHandler,
		RolesHandler:         rolesHandler,
		MattersHandler:       mattersHandler,
		DocumentsHandler:     documentsHandler,
		ApprovalsHandler:     approvalsHandler,
		NotificationsHandler: notificationsHandler,
		BillingHandler:       billingHandler,
		DraftingHandler:      draftingHandler,
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
