package notifications

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"github.com/suvarnachakram/results-backend/pkg/logger"
	"github.com/suvarnachakram/results-backend/pkg/webpush"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu sync.Mutex

	findByIDFn          func(ctx context.Context, id uuid.UUID) (*models.NotificationSubscription, error)
	findByEndpointFn    func(ctx context.Context, endpoint string) (*models.NotificationSubscription, error)
	findActiveForSlotFn func(ctx context.Context, slot string) ([]models.NotificationSubscription, error)
	createFn            func(ctx context.Context, sub *models.NotificationSubscription) error
	reactivateFn        func(ctx context.Context, id uuid.UUID, p256dh, auth string) error
	saveSettingsFn      func(ctx context.Context, settings *models.NotificationSettings) error
	deactivateFn        func(ctx context.Context, id uuid.UUID) (bool, error)

	logs        []models.NotificationLog
	touched     []uuid.UUID
	deactivated []uuid.UUID
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.NotificationSubscription, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByEndpoint(ctx context.Context, endpoint string) (*models.NotificationSubscription, error) {
	if f.findByEndpointFn != nil {
		return f.findByEndpointFn(ctx, endpoint)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindActiveForSlot(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
	if f.findActiveForSlotFn != nil {
		return f.findActiveForSlotFn(ctx, slot)
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, sub *models.NotificationSubscription) error {
	if f.createFn != nil {
		return f.createFn(ctx, sub)
	}
	return nil
}

func (f *fakeRepo) Reactivate(ctx context.Context, id uuid.UUID, p256dh, auth string) error {
	if f.reactivateFn != nil {
		return f.reactivateFn(ctx, id, p256dh, auth)
	}
	return nil
}

func (f *fakeRepo) SaveSettings(ctx context.Context, settings *models.NotificationSettings) error {
	if f.saveSettingsFn != nil {
		return f.saveSettingsFn(ctx, settings)
	}
	return nil
}

func (f *fakeRepo) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	f.deactivated = append(f.deactivated, id)
	f.mu.Unlock()
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return true, nil
}

func (f *fakeRepo) TouchLastNotified(ctx context.Context, id uuid.UUID, now time.Time) error {
	f.mu.Lock()
	f.touched = append(f.touched, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeRepo) AppendLog(ctx context.Context, log *models.NotificationLog) error {
	f.mu.Lock()
	f.logs = append(f.logs, *log)
	f.mu.Unlock()
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	sends []sentPush

	// respond decides status and error per destination endpoint.
	respond func(dest webpush.Destination) (int, error)
}

type sentPush struct {
	dest    webpush.Destination
	payload []byte
}

func (f *fakeSender) Send(ctx context.Context, dest webpush.Destination, payload []byte) (int, error) {
	f.mu.Lock()
	f.sends = append(f.sends, sentPush{dest: dest, payload: payload})
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(dest)
	}
	return 201, nil
}

type fakeDrawReader struct {
	draw *models.Draw
	err  error
}

func (f *fakeDrawReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.draw == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.draw, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})
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

func testPushConfig() config.PushConfig {
	return config.PushConfig{
		IconPath:   "/icon-192.png",
		BadgePath:  "/badge-96.png",
		ResultsURL: "/results",
	}
}

func activeSub(endpoint string) models.NotificationSubscription {
	return models.NotificationSubscription{
		ID:        uuid.New(),
		Endpoint:  endpoint,
		P256dhKey: "p256dh-" + endpoint,
		AuthKey:   "auth-" + endpoint,
		IsActive:  true,
	}
}
