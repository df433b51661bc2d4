package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/suvarnachakram/results-backend/internal/draws"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
)

type testGenerator struct {
	ensureFn func(ctx context.Context, date time.Time) (draws.GenerateResult, error)
}

func (g *testGenerator) EnsureDraftsForDate(ctx context.Context, date time.Time) (draws.GenerateResult, error) {
	if g.ensureFn != nil {
		return g.ensureFn(ctx, date)
	}
	return draws.GenerateResult{}, nil
}

type testPublisher struct {
	autoFn  func(ctx context.Context, now time.Time) (draws.PublishReport, error)
	forceFn func(ctx context.Context, id uuid.UUID) (*models.Draw, error)
}

func (p *testPublisher) AutoPublishDue(ctx context.Context, now time.Time) (draws.PublishReport, error) {
	if p.autoFn != nil {
		return p.autoFn(ctx, now)
	}
	return draws.PublishReport{}, nil
}

func (p *testPublisher) ForcePublish(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	if p.forceFn != nil {
		return p.forceFn(ctx, id)
	}
	return nil, nil
}

func TestGenerateDraftsWithDate(t *testing.T) {
	gen := &testGenerator{
		ensureFn: func(ctx context.Context, date time.Time) (draws.GenerateResult, error) {
			if got := date.Format("2006-01-02"); got != "2025-03-05" {
				t.Fatalf("unexpected date %s", got)
			}
			return draws.GenerateResult{Date: "2025-03-05", Created: 5}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/draws/generate",
		strings.NewReader(`{"date":"2025-03-05"}`))
	resp := httptest.NewRecorder()
	GenerateDrafts(gen, testClock(t), testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data draws.GenerateResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Created != 5 {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestGenerateDraftsEmptyBodyDefaultsToNow(t *testing.T) {
	called := false
	gen := &testGenerator{
		ensureFn: func(ctx context.Context, date time.Time) (draws.GenerateResult, error) {
			called = true
			if time.Since(date) > time.Minute {
				t.Fatalf("expected current time, got %s", date)
			}
			return draws.GenerateResult{Skipped: true}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/draws/generate", nil)
	resp := httptest.NewRecorder()
	GenerateDrafts(gen, testClock(t), testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected generator called")
	}
}

func TestGenerateDraftsRejectsBadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/draws/generate",
		strings.NewReader(`{"date":"03/05/2025"}`))
	resp := httptest.NewRecorder()
	GenerateDrafts(&testGenerator{}, testClock(t), testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestForcePublishDraw(t *testing.T) {
	drawID := uuid.New()
	pub := &testPublisher{
		forceFn: func(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
			if id != drawID {
				t.Fatalf("unexpected draw %s", id)
			}
			return &models.Draw{ID: id, Slot: "14:00", Published: true}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/draws/"+drawID.String()+"/publish", nil)
	req = addRouteParam(req, "drawId", drawID.String())
	resp := httptest.NewRecorder()
	ForcePublishDraw(pub, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.Draw `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.Published {
		t.Fatal("expected published draw in response")
	}
}

func TestForcePublishDrawInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/draws/nope/publish", nil)
	req = addRouteParam(req, "drawId", "nope")
	resp := httptest.NewRecorder()
	ForcePublishDraw(&testPublisher{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestForcePublishDrawNotFound(t *testing.T) {
	pub := &testPublisher{
		forceFn: func(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draw not found")
		},
	}
	drawID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/draws/"+drawID+"/publish", nil)
	req = addRouteParam(req, "drawId", drawID)
	resp := httptest.NewRecorder()
	ForcePublishDraw(pub, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
