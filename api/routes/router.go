package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suvarnachakram/results-backend/api/controllers"
	"github.com/suvarnachakram/results-backend/api/middleware"
	"github.com/suvarnachakram/results-backend/internal/automation"
	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/notifications"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// RouterParams carry everything the HTTP surface depends on. Automation
// fields may be nil when the worker is disabled; the owning endpoints then
// answer with an internal error while the read surface keeps serving.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger
	Clock  *schedule.Clock

	Health map[string]controllers.Pinger

	DrawsService  draws.Service
	Generator     draws.Generator
	Publisher     draws.Publisher
	Subscriptions notifications.Service
	Dispatcher    notifications.Dispatcher

	Runner            *automation.Runner
	AutomationService *automation.Service
}

// NewRouter assembles the public, internal, and admin route trees.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Health))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/draws", func(r chi.Router) {
			r.Get("/", controllers.ListDraws(params.DrawsService, params.Clock, logg))
			r.Get("/next", controllers.NextDraw(params.DrawsService, logg))
		})
		r.Get("/schedule", controllers.Schedule(params.DrawsService, logg))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", controllers.CreateSubscription(params.Subscriptions, logg))
			r.Put("/{subscriptionId}/settings", controllers.UpdateSubscriptionSettings(params.Subscriptions, logg))
			r.Delete("/{subscriptionId}", controllers.DeleteSubscription(params.Subscriptions, logg))
		})

		r.Post("/automation/run", controllers.RunAutomation(params.Runner, logg))
		r.Post("/notifications/dispatch", controllers.DispatchNotifications(params.Dispatcher, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.OperatorAuth(cfg.AdminAPI.Token, logg))

		r.Post("/draws/generate", controllers.GenerateDrafts(params.Generator, params.Clock, logg))
		r.Post("/draws/{drawId}/publish", controllers.ForcePublishDraw(params.Publisher, logg))

		r.Route("/automation", func(r chi.Router) {
			r.Get("/status", controllers.AutomationStatus(params.AutomationService, logg))
			r.Put("/config", controllers.UpdateAutomationConfig(params.AutomationService, logg))
		})
	})

	return r
}
