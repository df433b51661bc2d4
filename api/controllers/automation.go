package controllers

import (
	"net/http"

	"github.com/suvarnachakram/results-backend/api/responses"
	"github.com/suvarnachakram/results-backend/api/validators"
	"github.com/suvarnachakram/results-backend/internal/automation"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// RunAutomation executes one synchronous draft + publish + reminder cycle.
// External cron hits this endpoint in deployments without the worker.
func RunAutomation(runner *automation.Runner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "automation unavailable"))
			return
		}

		result, err := runner.RunCycle(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AutomationStatus reports the worker's runtime state.
func AutomationStatus(svc *automation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "automation unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Status())
	}
}

type automationConfigRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// UpdateAutomationConfig toggles the worker at runtime.
func UpdateAutomationConfig(svc *automation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "automation unavailable"))
			return
		}

		var req automationConfigRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.SetEnabled(*req.Enabled)
		responses.WriteSuccess(w, svc.Status())
	}
}
