package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/suvarnachakram/results-backend/api/responses"
	"github.com/suvarnachakram/results-backend/api/validators"
	"github.com/suvarnachakram/results-backend/internal/notifications"
	"github.com/suvarnachakram/results-backend/pkg/enums"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

type dispatchRequest struct {
	Type   string `json:"type" validate:"required,oneof=pre_draw result_published"`
	Slot   string `json:"slot" validate:"required"`
	DrawID string `json:"drawId" validate:"omitempty,uuid"`
}

// DispatchNotifications pushes a notification to every subscription opted
// into the slot. Used by the cron trigger and by operators.
func DispatchNotifications(d notifications.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatcher unavailable"))
			return
		}

		var req dispatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var drawID *uuid.UUID
		if req.DrawID != "" {
			parsed, err := uuid.Parse(req.DrawID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid draw id"))
				return
			}
			drawID = &parsed
		}

		summary, err := d.Dispatch(r.Context(), enums.NotificationKind(req.Type), req.Slot, drawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
