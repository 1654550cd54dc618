package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/lexora-legal/lexora/internal/app"
	"github.com/lexora-legal/lexora/internal/documents"
	"github.com/lexora-legal/lexora/internal/drafting"
	"github.com/lexora-legal/lexora/internal/platform/cache"
	"github.com/lexora-legal/lexora/internal/platform/db"
	"github.com/lexora-legal/lexora/internal/realtime"
	"github.com/lexora-legal/lexora/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	cache.Configure(cfg.RedisAddr)
	redisClient, err := cache.Shared(ctx)
	if err != nil {
		logger.Warn("connect redis", slog.Any("error", err))
	}
	defer func() {
		if err := cache.Shutdown(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	publisher := realtime.NewPublisher(redisClient, logger)

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
	}
	sweepJob := documents.NewSweepJob(pool, store, logger)

	var generator drafting.Generator
	if cfg.DraftingConfigured() {
		generator = drafting.NewProviderClient(cfg.DraftProviderURL, cfg.DraftProviderKey, cfg.DraftProviderModel)
	} else {
		logger.Warn("drafting provider not configured, draft generation disabled")
	}
	draftJob := drafting.NewJob(drafting.NewRepository(pool), generator, publisher, logger)

	sweepTask, err := jobs.NewRetentionSweepTask(jobs.RetentionSweepPayload{OlderThanDays: cfg.RetentionSweepDays})
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskTypeRetentionSweep, Handler: sweepJob.Handle},
	}
	if generator != nil {
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskTypeDraftGenerate, Handler: draftJob.Handle})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  handlers,
		Cron: []jobs.CronRegistration{
			{Spec: "45 2 * * *", Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
