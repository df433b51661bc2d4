package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/notifications"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/enums"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// Runner executes one synchronous automation cycle. It backs the
// cron-triggered HTTP entry point: drafts and publication run
// unconditionally (both are idempotent), reminders only when the call lands
// on a slot's reminder minute.
type Runner struct {
	logg       *logger.Logger
	generator  draws.Generator
	publisher  draws.Publisher
	draws      drawFinder
	dispatcher notifications.Dispatcher
	clock      *schedule.Clock
	now        func() time.Time
}

// RunnerParams configure the runner.
type RunnerParams struct {
	Logger     *logger.Logger
	Generator  draws.Generator
	Publisher  draws.Publisher
	Draws      drawFinder
	Dispatcher notifications.Dispatcher
	Clock      *schedule.Clock
}

// CycleResult carries the per-step outcome of one cycle.
type CycleResult struct {
	DraftMsg      string `json:"draftMsg"`
	PublishMsg    string `json:"publishMsg"`
	RemindersSent int    `json:"remindersSent"`
}

// NewRunner wires the synchronous cycle dependencies.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Generator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draft generator required")
	}
	if params.Publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "publisher required")
	}
	if params.Draws == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draw finder required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dispatcher required")
	}
	if params.Clock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "schedule clock required")
	}
	return &Runner{
		logg:       params.Logger,
		generator:  params.Generator,
		publisher:  params.Publisher,
		draws:      params.Draws,
		dispatcher: params.Dispatcher,
		clock:      params.Clock,
		now:        time.Now,
	}, nil
}

// RunCycle performs draft generation, auto-publish, and due reminders in
// order and reports each step.
func (r *Runner) RunCycle(ctx context.Context) (*CycleResult, error) {
	now := r.now()
	result := &CycleResult{}

	draft, err := r.generator.EnsureDraftsForDate(ctx, now)
	if err != nil {
		return nil, err
	}
	if draft.Skipped {
		result.DraftMsg = fmt.Sprintf("Drafts already exist for %s", draft.Date)
	} else {
		result.DraftMsg = fmt.Sprintf("Created %d drafts for %s", draft.Created, draft.Date)
	}

	report, err := r.publisher.AutoPublishDue(ctx, now)
	if err != nil {
		// With no due rows resolved the pass never ran; a partial pass
		// logs its per-row failures and reports what succeeded.
		if report.Due == 0 {
			return nil, err
		}
		r.logg.Error(ctx, "publish step finished with errors", err)
	}
	if report.Due == 0 {
		result.PublishMsg = "No pending draws to publish."
	} else {
		result.PublishMsg = fmt.Sprintf("Published %d draws.", report.Published)
	}

	sent, err := r.runReminders(ctx, now)
	if err != nil {
		r.logg.Error(ctx, "reminder step finished with errors", err)
	}
	result.RemindersSent = sent

	return result, nil
}

func (r *Runner) runReminders(ctx context.Context, now time.Time) (int, error) {
	var due []string
	for _, slot := range r.clock.Slots() {
		hit, err := r.clock.ReminderMinute(slot, now)
		if err != nil {
			return 0, err
		}
		if hit {
			due = append(due, slot)
		}
	}
	if len(due) == 0 {
		return 0, nil
	}

	today, err := r.draws.FindByDate(ctx, r.clock.DateKey(now))
	if err != nil {
		return 0, fmt.Errorf("load today's draws: %w", err)
	}

	sent := 0
	for _, slot := range due {
		var drawID *uuid.UUID
		for i := range today {
			if today[i].Slot == slot {
				drawID = &today[i].ID
				break
			}
		}
		if drawID == nil {
			continue
		}
		if _, err := r.dispatcher.Dispatch(ctx, enums.NotificationKindPreDraw, slot, drawID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
