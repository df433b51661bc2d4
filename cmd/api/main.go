package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/suvarnachakram/results-backend/api/controllers"
	"github.com/suvarnachakram/results-backend/api/routes"
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
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	drawsRepo := draws.NewRepository(dbClient.DB())
	notifRepo := notifications.NewRepository(dbClient.DB())

	drawsService, err := draws.NewService(drawsRepo, clock)
	if err != nil {
		logg.Error(context.Background(), "failed to create draws service", err)
		os.Exit(1)
	}

	subscriptions, err := notifications.NewService(notifRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
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

	// Push-backed components stay nil when VAPID keys are not configured;
	// the owning endpoints answer with an internal error while the read
	// surface keeps serving.
	var (
		dispatcher        notifications.Dispatcher
		publisher         draws.Publisher
		runner            *automation.Runner
		automationService *automation.Service
	)
	pushClient, err := webpush.NewClient(context.Background(), cfg.Push, logg)
	if err != nil {
		logg.Warn(context.Background(), "web push disabled: "+err.Error())
	} else {
		dispatcher, err = notifications.NewDispatcher(notifications.DispatcherParams{
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

		publisher, err = draws.NewPublisher(draws.PublisherParams{
			Logger:    logg,
			Repo:      drawsRepo,
			Clock:     clock,
			Announcer: notifications.ResultAnnouncer{Dispatcher: dispatcher},
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create publisher", err)
			os.Exit(1)
		}

		runner, err = automation.NewRunner(automation.RunnerParams{
			Logger:     logg,
			Generator:  generator,
			Publisher:  publisher,
			Draws:      drawsRepo,
			Dispatcher: dispatcher,
			Clock:      clock,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create automation runner", err)
			os.Exit(1)
		}

		automationService, err = buildAutomationService(cfg, logg, redisClient, clock, generator, publisher, drawsRepo, dispatcher)
		if err != nil {
			logg.Error(context.Background(), "failed to create automation service", err)
			os.Exit(1)
		}
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	if automationService != nil {
		go func() {
			if err := automationService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "automation loop stopped unexpectedly", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithField(ctx, "addr", addr)
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			Clock:  clock,
			Health: map[string]controllers.Pinger{
				"postgres": dbClient,
				"redis":    redisClient,
			},
			DrawsService:      drawsService,
			Generator:         generator,
			Publisher:         publisher,
			Subscriptions:     subscriptions,
			Dispatcher:        dispatcher,
			Runner:            runner,
			AutomationService: automationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildAutomationService(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	clock *schedule.Clock,
	generator draws.Generator,
	publisher draws.Publisher,
	drawsRepo draws.Repository,
	dispatcher notifications.Dispatcher,
) (*automation.Service, error) {
	draftJob, err := automation.NewDraftJob(automation.DraftJobParams{
		Logger:    logg,
		Generator: generator,
		Clock:     clock,
	})
	if err != nil {
		return nil, err
	}
	publishJob, err := automation.NewPublishJob(automation.PublishJobParams{
		Logger:    logg,
		Publisher: publisher,
	})
	if err != nil {
		return nil, err
	}
	reminderJob, err := automation.NewReminderJob(automation.ReminderJobParams{
		Logger:     logg,
		Draws:      drawsRepo,
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	if err != nil {
		return nil, err
	}

	lock, err := automation.NewRedisLock(redisClient, redisClient.LockKey("automation"), 0)
	if err != nil {
		return nil, err
	}

	return automation.NewService(automation.ServiceParams{
		Logger:   logg,
		Registry: automation.NewRegistry(draftJob, publishJob, reminderJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Automation.TickInterval,
		Enabled:  cfg.Automation.Enabled,
	})
}
