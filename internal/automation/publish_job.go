package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// PublishJobParams configure the auto-publish job.
type PublishJobParams struct {
	Logger    *logger.Logger
	Publisher draws.Publisher
}

// NewPublishJob builds the job that promotes due drafts on every tick.
func NewPublishJob(params PublishJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("publisher required")
	}
	return &publishJob{
		logg:      params.Logger,
		publisher: params.Publisher,
		now:       time.Now,
	}, nil
}

type publishJob struct {
	logg      *logger.Logger
	publisher draws.Publisher
	now       func() time.Time
}

func (j *publishJob) Name() string { return "auto-publish" }

func (j *publishJob) Run(ctx context.Context) error {
	report, err := j.publisher.AutoPublishDue(ctx, j.now())
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"date":      report.Date,
		"published": report.Published,
	})
	if err != nil {
		return fmt.Errorf("auto publish: %w", err)
	}
	j.logg.Info(logCtx, "publish pass complete")
	return nil
}
