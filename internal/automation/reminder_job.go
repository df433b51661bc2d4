package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/notifications"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"github.com/suvarnachakram/results-backend/pkg/enums"
	"github.com/suvarnachakram/results-backend/pkg/logger"
	"go.uber.org/multierr"
)

type drawFinder interface {
	FindByDate(ctx context.Context, date string) ([]models.Draw, error)
}

// ReminderJobParams configure the pre-draw reminder job.
type ReminderJobParams struct {
	Logger     *logger.Logger
	Draws      drawFinder
	Dispatcher notifications.Dispatcher
	Clock      *schedule.Clock
}

// NewReminderJob builds the job that sends pre-draw reminders when a tick
// lands exactly on a slot's reminder minute. A tick that skips the minute
// skips that slot's reminder for the day.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Draws == nil {
		return nil, fmt.Errorf("draw finder required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if params.Clock == nil {
		return nil, fmt.Errorf("schedule clock required")
	}
	return &reminderJob{
		logg:       params.Logger,
		draws:      params.Draws,
		dispatcher: params.Dispatcher,
		clock:      params.Clock,
		now:        time.Now,
	}, nil
}

type reminderJob struct {
	logg       *logger.Logger
	draws      drawFinder
	dispatcher notifications.Dispatcher
	clock      *schedule.Clock
	now        func() time.Time
}

func (j *reminderJob) Name() string { return "pre-draw-reminder" }

func (j *reminderJob) Run(ctx context.Context) error {
	now := j.now()

	due := make([]string, 0, 1)
	for _, slot := range j.clock.Slots() {
		hit, err := j.clock.ReminderMinute(slot, now)
		if err != nil {
			return err
		}
		if hit {
			due = append(due, slot)
		}
	}
	if len(due) == 0 {
		return nil
	}

	today, err := j.draws.FindByDate(ctx, j.clock.DateKey(now))
	if err != nil {
		return fmt.Errorf("load today's draws: %w", err)
	}
	bySlot := make(map[string]uuid.UUID, len(today))
	for _, row := range today {
		bySlot[row.Slot] = row.ID
	}

	var errs []error
	for _, slot := range due {
		logCtx := j.logg.WithSlot(ctx, slot)
		drawID, ok := bySlot[slot]
		if !ok {
			j.logg.Warn(logCtx, "no draw for slot, reminder skipped")
			continue
		}
		summary, err := j.dispatcher.Dispatch(ctx, enums.NotificationKindPreDraw, slot, &drawID)
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder for %s: %w", slot, err))
			continue
		}
		j.logg.Info(j.logg.WithFields(logCtx, map[string]any{
			"total":      summary.Total,
			"successful": summary.Successful,
			"failed":     summary.Failed,
		}), "pre-draw reminder sent")
	}
	return multierr.Combine(errs...)
}
