package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/suvarnachakram/results-backend/api/responses"
	"github.com/suvarnachakram/results-backend/api/validators"
	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

type generateDraftsRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// GenerateDrafts creates draft draws for a date on operator demand. The
// timing gate is bypassed; the one-set-per-date rule still applies.
func GenerateDrafts(gen draws.Generator, clock *schedule.Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gen == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft generator unavailable"))
			return
		}

		var req generateDraftsRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		date := time.Now()
		if req.Date != "" {
			parsed, err := time.ParseInLocation("2006-01-02", req.Date, clock.Location())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
				return
			}
			date = parsed
		}

		result, err := gen.EnsureDraftsForDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ForcePublishDraw publishes a draw immediately, bypassing the slot delay.
func ForcePublishDraw(pub draws.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "publisher unavailable"))
			return
		}

		drawID, err := uuid.Parse(chi.URLParam(r, "drawId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid draw id"))
			return
		}

		row, err := pub.ForcePublish(r.Context(), drawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
