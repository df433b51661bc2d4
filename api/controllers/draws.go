package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/suvarnachakram/results-backend/api/responses"
	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// ListDraws returns the published draws for a date, defaulting to today.
func ListDraws(svc draws.Service, clock *schedule.Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draws service unavailable"))
			return
		}

		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			date = clock.DateKey(time.Now())
		}

		views, err := svc.PublishedForDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"date":  date,
			"draws": views,
		})
	}
}

// NextDraw returns the upcoming slot and its countdown.
func NextDraw(svc draws.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draws service unavailable"))
			return
		}

		view, err := svc.Next(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Schedule returns today's slot list with lifecycle states.
func Schedule(svc draws.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draws service unavailable"))
			return
		}

		views, err := svc.ScheduleForDay(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"slots": views})
	}
}
