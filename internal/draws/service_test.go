package draws

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
)

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testClock(t))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestPublishedForDate(t *testing.T) {
	repo := &fakeRepo{
		findPublishedFn: func(ctx context.Context, date string) ([]models.Draw, error) {
			return []models.Draw{{
				ID:        uuid.New(),
				Date:      date,
				Slot:      "10:00",
				DrawNo:    "SC050320251",
				Digit1:    "4",
				Digit2:    "2",
				Digit3:    "0",
				Digit4:    "6",
				Digit5:    "9",
				Published: true,
			}}, nil
		},
	}
	svc := newTestService(t, repo)

	views, err := svc.PublishedForDate(context.Background(), "2025-03-05")
	if err != nil {
		t.Fatalf("PublishedForDate: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Digits != "42069" {
		t.Fatalf("digits = %s, want 42069", views[0].Digits)
	}
	if views[0].AnnouncedAt != "10:30" {
		t.Fatalf("announcedAt = %s, want 10:30", views[0].AnnouncedAt)
	}
}

func TestPublishedForDateRejectsBadDate(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	if _, err := svc.PublishedForDate(context.Background(), "05-03-2025"); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := svc.PublishedForDate(context.Background(), ""); err == nil {
		t.Fatal("expected validation error for empty date")
	}
}

func TestNext(t *testing.T) {
	clock := testClock(t)
	svc := newTestService(t, &fakeRepo{})

	view, err := svc.Next(context.Background(), istTime(t, clock, 13, 30))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if view.Slot != "14:00" {
		t.Fatalf("slot = %s, want 14:00", view.Slot)
	}
	if view.SecondsTo != 30*60 {
		t.Fatalf("secondsTo = %d, want 1800", view.SecondsTo)
	}
}

func TestScheduleForDay(t *testing.T) {
	clock := testClock(t)
	repo := &fakeRepo{
		findPublishedFn: func(ctx context.Context, date string) ([]models.Draw, error) {
			return []models.Draw{{Slot: "10:00", Published: true}}, nil
		},
	}
	svc := newTestService(t, repo)

	views, err := svc.ScheduleForDay(context.Background(), istTime(t, clock, 12, 5))
	if err != nil {
		t.Fatalf("ScheduleForDay: %v", err)
	}
	if len(views) != 5 {
		t.Fatalf("views = %d, want 5", len(views))
	}
	if views[0].State != schedule.SlotStateRevealed || !views[0].Published {
		t.Fatalf("10:00 view = %+v, want revealed and published", views[0])
	}
	if views[1].State != schedule.SlotStateLive {
		t.Fatalf("12:00 state = %s, want live", views[1].State)
	}
	if views[2].State != schedule.SlotStateWaiting {
		t.Fatalf("14:00 state = %s, want waiting", views[2].State)
	}
}
