package draws

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

// Generator creates the day's unpublished draft draws.
type Generator interface {
	EnsureDraftsForDate(ctx context.Context, date time.Time) (GenerateResult, error)
}

// GenerateResult reports what a generation pass did.
type GenerateResult struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Skipped bool   `json:"skipped"`
}

// GeneratorParams configure the draft generator.
type GeneratorParams struct {
	Logger *logger.Logger
	Repo   Repository
	Clock  *schedule.Clock
}

type generator struct {
	logg  *logger.Logger
	repo  Repository
	clock *schedule.Clock
	digit func() int
}

// NewGenerator wires draft generation dependencies.
func NewGenerator(params GeneratorParams) (Generator, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draws repository required")
	}
	if params.Clock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "schedule clock required")
	}
	return &generator{
		logg:  params.Logger,
		repo:  params.Repo,
		clock: params.Clock,
		digit: func() int { return rand.IntN(10) },
	}, nil
}

// EnsureDraftsForDate inserts one draft per slot for the given calendar day.
// Any existing row for the date, even a partial set, makes the whole pass a
// no-op.
func (g *generator) EnsureDraftsForDate(ctx context.Context, date time.Time) (GenerateResult, error) {
	dateKey := g.clock.DateKey(date)
	result := GenerateResult{Date: dateKey}

	exists, err := g.repo.HasAnyForDate(ctx, dateKey)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing draws")
	}
	if exists {
		result.Skipped = true
		logCtx := g.logg.WithFields(ctx, map[string]any{"date": dateKey})
		g.logg.Info(logCtx, "draft generation skipped, draws already exist")
		return result, nil
	}

	slots := g.clock.Slots()
	rows := make([]models.Draw, 0, len(slots))
	for _, slot := range slots {
		drawNo, err := g.clock.DrawNumber(date, slot)
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive draw number")
		}
		rows = append(rows, models.Draw{
			ID:        uuid.New(),
			Date:      dateKey,
			Slot:      slot,
			DrawNo:    drawNo,
			Digit1:    g.randomDigit(),
			Digit2:    g.randomDigit(),
			Digit3:    g.randomDigit(),
			Digit4:    g.randomDigit(),
			Digit5:    g.randomDigit(),
			Published: false,
		})
	}

	if err := g.repo.InsertMany(ctx, rows); err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert draft draws")
	}

	result.Created = len(rows)
	logCtx := g.logg.WithFields(ctx, map[string]any{"date": dateKey, "created": result.Created})
	g.logg.Info(logCtx, "draft draws generated")
	return result, nil
}

func (g *generator) randomDigit() string {
	return strconv.Itoa(g.digit())
}
