package draws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Announcer pushes the result-published notification for a draw. Delivery
// failures never undo a publication.
type Announcer interface {
	AnnounceResult(ctx context.Context, slot string, drawID uuid.UUID) error
}

// Publisher flips due draws to published and announces each transition.
type Publisher interface {
	AutoPublishDue(ctx context.Context, now time.Time) (PublishReport, error)
	ForcePublish(ctx context.Context, id uuid.UUID) (*models.Draw, error)
}

// PublishReport summarizes one auto-publish pass.
type PublishReport struct {
	Date      string `json:"date"`
	Due       int    `json:"due"`
	Published int    `json:"published"`
}

// PublisherParams configure the publisher.
type PublisherParams struct {
	Logger    *logger.Logger
	Repo      Repository
	Clock     *schedule.Clock
	Announcer Announcer
}

type publisher struct {
	logg      *logger.Logger
	repo      Repository
	clock     *schedule.Clock
	announcer Announcer
	now       func() time.Time
}

// NewPublisher wires publish dependencies.
func NewPublisher(params PublisherParams) (Publisher, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draws repository required")
	}
	if params.Clock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "schedule clock required")
	}
	if params.Announcer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "result announcer required")
	}
	return &publisher{
		logg:      params.Logger,
		repo:      params.Repo,
		clock:     params.Clock,
		announcer: params.Announcer,
		now:       time.Now,
	}, nil
}

// AutoPublishDue publishes every unpublished draw of the current day whose
// slot time plus the publish delay has passed. A failing row is skipped and
// reported; the rest of the batch still runs.
func (p *publisher) AutoPublishDue(ctx context.Context, now time.Time) (PublishReport, error) {
	date := p.clock.DateKey(now)
	report := PublishReport{Date: date}

	rows, err := p.repo.FindUnpublishedByDate(ctx, date)
	if err != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unpublished draws")
	}

	var errs []error
	for _, row := range rows {
		due, err := p.clock.PublishDue(row.Slot, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("draw %s: %w", row.DrawNo, err))
			continue
		}
		if !due {
			continue
		}
		report.Due++

		updated, err := p.repo.MarkPublished(ctx, row.ID, p.now().UTC())
		if err != nil {
			errs = append(errs, fmt.Errorf("publish draw %s: %w", row.DrawNo, err))
			continue
		}
		if !updated {
			continue
		}
		report.Published++
		p.announce(ctx, row.Slot, row.ID, row.DrawNo)
	}

	logCtx := p.logg.WithFields(ctx, map[string]any{
		"date":      date,
		"due":       report.Due,
		"published": report.Published,
	})
	p.logg.Info(logCtx, "auto publish pass complete")
	return report, multierr.Combine(errs...)
}

// ForcePublish publishes a draw regardless of slot timing. An already
// published draw is returned unchanged and no announcement is sent.
func (p *publisher) ForcePublish(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	row, err := p.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draw not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draw")
	}
	if row.Published {
		return row, nil
	}

	updated, err := p.repo.MarkPublished(ctx, id, p.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish draw")
	}
	row.Published = true
	if updated {
		p.announce(ctx, row.Slot, row.ID, row.DrawNo)
	}
	return row, nil
}

func (p *publisher) announce(ctx context.Context, slot string, drawID uuid.UUID, drawNo string) {
	logCtx := p.logg.WithDrawNo(p.logg.WithSlot(ctx, slot), drawNo)
	if err := p.announcer.AnnounceResult(ctx, slot, drawID); err != nil {
		p.logg.Warn(logCtx, "result announcement failed: "+err.Error())
		return
	}
	p.logg.Info(logCtx, "result published and announced")
}
