package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
)

type testDrawsService struct {
	publishedFn func(ctx context.Context, date string) ([]draws.DrawView, error)
	nextFn      func(ctx context.Context, now time.Time) (*draws.NextView, error)
	scheduleFn  func(ctx context.Context, now time.Time) ([]draws.SlotView, error)
}

func (s *testDrawsService) PublishedForDate(ctx context.Context, date string) ([]draws.DrawView, error) {
	if s.publishedFn != nil {
		return s.publishedFn(ctx, date)
	}
	return nil, nil
}

func (s *testDrawsService) Next(ctx context.Context, now time.Time) (*draws.NextView, error) {
	if s.nextFn != nil {
		return s.nextFn(ctx, now)
	}
	return nil, nil
}

func (s *testDrawsService) ScheduleForDay(ctx context.Context, now time.Time) ([]draws.SlotView, error) {
	if s.scheduleFn != nil {
		return s.scheduleFn(ctx, now)
	}
	return nil, nil
}

func testClock(t *testing.T) *schedule.Clock {
	t.Helper()
	clock, err := schedule.New(config.AutomationConfig{
		Slots:               []string{"10:00", "12:00", "14:00", "17:00", "19:00"},
		GenerateTime:        "06:00",
		PublishDelayMinutes: 15,
		ReminderLeadMinutes: 15,
		RevealOffsetMinutes: 15,
		Timezone:            "Asia/Kolkata",
	})
	if err != nil {
		t.Fatalf("build clock: %v", err)
	}
	return clock
}

func TestListDrawsExplicitDate(t *testing.T) {
	svc := &testDrawsService{
		publishedFn: func(ctx context.Context, date string) ([]draws.DrawView, error) {
			if date != "2025-03-05" {
				t.Fatalf("unexpected date %s", date)
			}
			return []draws.DrawView{{ID: uuid.New(), Date: date, Slot: "10:00", Digits: "12345"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/draws?date=2025-03-05", nil)
	resp := httptest.NewRecorder()
	ListDraws(svc, testClock(t), testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Date  string           `json:"date"`
			Draws []draws.DrawView `json:"draws"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Date != "2025-03-05" || len(envelope.Data.Draws) != 1 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestListDrawsDefaultsToToday(t *testing.T) {
	clock := testClock(t)
	want := clock.DateKey(time.Now())
	svc := &testDrawsService{
		publishedFn: func(ctx context.Context, date string) ([]draws.DrawView, error) {
			if date != want {
				t.Fatalf("expected today %s, got %s", want, date)
			}
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/draws", nil)
	resp := httptest.NewRecorder()
	ListDraws(svc, clock, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestListDrawsValidationError(t *testing.T) {
	svc := &testDrawsService{
		publishedFn: func(ctx context.Context, date string) ([]draws.DrawView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/draws?date=garbage", nil)
	resp := httptest.NewRecorder()
	ListDraws(svc, testClock(t), testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestNextDraw(t *testing.T) {
	svc := &testDrawsService{
		nextFn: func(ctx context.Context, now time.Time) (*draws.NextView, error) {
			return &draws.NextView{Slot: "14:00", Date: "2025-03-05", SecondsTo: 1800}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/draws/next", nil)
	resp := httptest.NewRecorder()
	NextDraw(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data draws.NextView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Slot != "14:00" || envelope.Data.SecondsTo != 1800 {
		t.Fatalf("unexpected view %+v", envelope.Data)
	}
}

func TestSchedule(t *testing.T) {
	svc := &testDrawsService{
		scheduleFn: func(ctx context.Context, now time.Time) ([]draws.SlotView, error) {
			return []draws.SlotView{
				{Slot: "10:00", State: "revealed", Published: true},
				{Slot: "12:00", State: "live"},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	resp := httptest.NewRecorder()
	Schedule(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Slots []draws.SlotView `json:"slots"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Slots) != 2 || envelope.Data.Slots[0].State != "revealed" {
		t.Fatalf("unexpected slots %+v", envelope.Data.Slots)
	}
}
