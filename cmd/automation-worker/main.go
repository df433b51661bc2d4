package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suvarnachakram/results-backend/internal/automation"
	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/notifications"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/db"
	"github.com/suvarnachakram/results-backend/pkg/instance"
	"github.com/suvarnachakram/results-backend/pkg/logger"
	"github.com/suvarnachakram/results-backend/pkg/metrics"
	"github.com/suvarnachakram/results-backend/pkg/migrate"
	"github.com/suvarnachakram/results-backend/pkg/redis"
	"github.com/suvarnachakram/results-backend/pkg/webpush"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "automation-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "automation-worker"

	logg = logger.New(logger.Options{
		ServiceName: "automation-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	clock, err := schedule.New(cfg.Automation)
	if err != nil {
		logg.Error(context.Background(), "failed to build draw schedule", err)
		os.Exit(1)
	}

	pushClient, err := webpush.NewClient(context.Background(), cfg.Push, logg)
	if err != nil {
		logg.Error(context.Background(), "web push configuration required for the worker", err)
		os.Exit(1)
	}

	drawsRepo := draws.NewRepository(dbClient.DB())
	notifRepo := notifications.NewRepository(dbClient.DB())

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Logger: logg,
		Repo:   notifRepo,
		Draws:  drawsRepo,
		Sender: pushClient,
		Clock:  clock,
		Push:   cfg.Push,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	generator, err := draws.NewGenerator(draws.GeneratorParams{
		Logger: logg,
		Repo:   drawsRepo,
		Clock:  clock,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create draft generator", err)
		os.Exit(1)
	}

	publisher, err := draws.NewPublisher(draws.PublisherParams{
		Logger:    logg,
		Repo:      drawsRepo,
		Clock:     clock,
		Announcer: notifications.ResultAnnouncer{Dispatcher: dispatcher},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create publisher", err)
		os.Exit(1)
	}

	draftJob, err := automation.NewDraftJob(automation.DraftJobParams{
		Logger:    logg,
		Generator: generator,
		Clock:     clock,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create draft job", err)
		os.Exit(1)
	}

	publishJob, err := automation.NewPublishJob(automation.PublishJobParams{
		Logger:    logg,
		Publisher: publisher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create publish job", err)
		os.Exit(1)
	}

	reminderJob, err := automation.NewReminderJob(automation.ReminderJobParams{
		Logger:     logg,
		Draws:      drawsRepo,
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	lock, err := automation.NewRedisLock(redisClient, redisClient.LockKey("automation"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create automation lock", err)
		os.Exit(1)
	}

	service, err := automation.NewService(automation.ServiceParams{
		Logger:   logg,
		Registry: automation.NewRegistry(draftJob, publishJob, reminderJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Automation.TickInterval,
		Enabled:  cfg.Automation.Enabled,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create automation service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting automation worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "automation worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "automation worker shutting down gracefully")
}
