package draws

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"github.com/suvarnachakram/results-backend/pkg/logger"
	"gorm.io/gorm"
)

type fakeRepo struct {
	findByDateFn          func(ctx context.Context, date string) ([]models.Draw, error)
	findPublishedFn       func(ctx context.Context, date string) ([]models.Draw, error)
	findUnpublishedFn     func(ctx context.Context, date string) ([]models.Draw, error)
	findByIDFn            func(ctx context.Context, id uuid.UUID) (*models.Draw, error)
	hasAnyForDateFn       func(ctx context.Context, date string) (bool, error)
	existsForSlotFn       func(ctx context.Context, date, slot string) (bool, error)
	insertManyFn          func(ctx context.Context, draws []models.Draw) error
	markPublishedFn       func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	markPublishedAttempts int
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByDate(ctx context.Context, date string) ([]models.Draw, error) {
	if f.findByDateFn != nil {
		return f.findByDateFn(ctx, date)
	}
	return nil, nil
}

func (f *fakeRepo) FindPublishedByDate(ctx context.Context, date string) ([]models.Draw, error) {
	if f.findPublishedFn != nil {
		return f.findPublishedFn(ctx, date)
	}
	return nil, nil
}

func (f *fakeRepo) FindUnpublishedByDate(ctx context.Context, date string) ([]models.Draw, error) {
	if f.findUnpublishedFn != nil {
		return f.findUnpublishedFn(ctx, date)
	}
	return nil, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) HasAnyForDate(ctx context.Context, date string) (bool, error) {
	if f.hasAnyForDateFn != nil {
		return f.hasAnyForDateFn(ctx, date)
	}
	return false, nil
}

func (f *fakeRepo) ExistsForSlot(ctx context.Context, date, slot string) (bool, error) {
	if f.existsForSlotFn != nil {
		return f.existsForSlotFn(ctx, date, slot)
	}
	return false, nil
}

func (f *fakeRepo) InsertMany(ctx context.Context, draws []models.Draw) error {
	if f.insertManyFn != nil {
		return f.insertManyFn(ctx, draws)
	}
	return nil
}

func (f *fakeRepo) MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	f.markPublishedAttempts++
	if f.markPublishedFn != nil {
		return f.markPublishedFn(ctx, id, now)
	}
	return true, nil
}

type fakeAnnouncer struct {
	calls []announceCall
	err   error
}

type announceCall struct {
	slot   string
	drawID uuid.UUID
}

func (f *fakeAnnouncer) AnnounceResult(ctx context.Context, slot string, drawID uuid.UUID) error {
	f.calls = append(f.calls, announceCall{slot: slot, drawID: drawID})
	return f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "draws-test", Output: io.Discard})
}

func testClock(t *testing.T) *schedule.Clock {
	t.Helper()
	clock, err := schedule.New(config.AutomationConfig{
		Slots:               []string{"10:00", "12:00", "14:00", "17:00", "19:00"},
		GenerateTime:        "06:00",
		PublishDelayMinutes: 15,
		ReminderLeadMinutes: 15,
		RevealOffsetMinutes: 15,
		AnnounceAfter:       30,
		Timezone:            "Asia/Kolkata",
	})
	if err != nil {
		t.Fatalf("schedule.New: %v", err)
	}
	return clock
}

func istTime(t *testing.T, clock *schedule.Clock, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2025, time.March, 5, hour, minute, 0, 0, clock.Location())
}
