package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// DraftJobParams configure the daily draft generation job.
type DraftJobParams struct {
	Logger    *logger.Logger
	Generator draws.Generator
	Clock     *schedule.Clock
}

// NewDraftJob builds the job that creates the day's draft draws when the
// tick lands on the configured generation minute.
func NewDraftJob(params DraftJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("draft generator required")
	}
	if params.Clock == nil {
		return nil, fmt.Errorf("schedule clock required")
	}
	return &draftJob{
		logg:      params.Logger,
		generator: params.Generator,
		clock:     params.Clock,
		now:       time.Now,
	}, nil
}

type draftJob struct {
	logg      *logger.Logger
	generator draws.Generator
	clock     *schedule.Clock
	now       func() time.Time
}

func (j *draftJob) Name() string { return "draft-generation" }

func (j *draftJob) Run(ctx context.Context) error {
	now := j.now()
	if !j.clock.GenerateMinute(now) {
		return nil
	}

	result, err := j.generator.EnsureDraftsForDate(ctx, now)
	if err != nil {
		return fmt.Errorf("ensure drafts: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"date":    result.Date,
		"created": result.Created,
		"skipped": result.Skipped,
	})
	j.logg.Info(logCtx, "daily draft pass complete")
	return nil
}
