package automation

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/notifications"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"github.com/suvarnachakram/results-backend/pkg/enums"
	"github.com/suvarnachakram/results-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "automation-test", Output: io.Discard})
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

type fakeGenerator struct {
	result draws.GenerateResult
	err    error
	calls  int
}

func (f *fakeGenerator) EnsureDraftsForDate(ctx context.Context, date time.Time) (draws.GenerateResult, error) {
	f.calls++
	return f.result, f.err
}

type fakePublisher struct {
	report draws.PublishReport
	err    error
	calls  int
}

func (f *fakePublisher) AutoPublishDue(ctx context.Context, now time.Time) (draws.PublishReport, error) {
	f.calls++
	return f.report, f.err
}

func (f *fakePublisher) ForcePublish(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	return nil, nil
}

type fakeDispatcher struct {
	dispatched []dispatchedEvent
	err        error
}

type dispatchedEvent struct {
	kind   enums.NotificationKind
	slot   string
	drawID *uuid.UUID
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, kind enums.NotificationKind, slot string, drawID *uuid.UUID) (*notifications.Summary, error) {
	f.dispatched = append(f.dispatched, dispatchedEvent{kind: kind, slot: slot, drawID: drawID})
	if f.err != nil {
		return nil, f.err
	}
	return &notifications.Summary{Type: kind, Slot: slot, Total: 1, Successful: 1}, nil
}

type fakeDrawFinder struct {
	rows []models.Draw
	err  error
}

func (f *fakeDrawFinder) FindByDate(ctx context.Context, date string) ([]models.Draw, error) {
	return f.rows, f.err
}

type fakeLock struct {
	acquired bool
	denied   bool
	err      error
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.denied {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}
