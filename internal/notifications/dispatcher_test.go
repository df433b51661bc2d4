package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"github.com/suvarnachakram/results-backend/pkg/enums"
	"github.com/suvarnachakram/results-backend/pkg/webpush"
)

func newTestDispatcher(t *testing.T, repo Repository, draws DrawReader, sender webpush.Sender) Dispatcher {
	t.Helper()
	if draws == nil {
		draws = &fakeDrawReader{}
	}
	d, err := NewDispatcher(DispatcherParams{
		Logger: testLogger(t),
		Repo:   repo,
		Draws:  draws,
		Sender: sender,
		Clock:  testClock(t),
		Push:   testPushConfig(),
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func TestDispatchValidatesInput(t *testing.T) {
	d := newTestDispatcher(t, &fakeRepo{}, nil, &fakeSender{})

	if _, err := d.Dispatch(context.Background(), "unknown", "10:00", nil); err == nil {
		t.Fatal("expected error for unknown notification type")
	}
	if _, err := d.Dispatch(context.Background(), enums.NotificationKindPreDraw, "11:00", nil); err == nil {
		t.Fatal("expected error for unknown slot")
	}
}

func TestDispatchFansOutToAllRecipients(t *testing.T) {
	subs := []models.NotificationSubscription{
		activeSub("https://push.example/a"),
		activeSub("https://push.example/b"),
		activeSub("https://push.example/c"),
	}
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			if slot != "10:00" {
				t.Fatalf("resolved slot %s, want 10:00", slot)
			}
			return subs, nil
		},
	}
	sender := &fakeSender{}
	d := newTestDispatcher(t, repo, nil, sender)

	summary, err := d.Dispatch(context.Background(), enums.NotificationKindPreDraw, "10:00", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Total != 3 || summary.Successful != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 3/3/0", summary)
	}
	if len(sender.sends) != 3 {
		t.Fatalf("sends = %d, want 3", len(sender.sends))
	}
	if len(repo.logs) != 3 {
		t.Fatalf("log entries = %d, want one per attempt", len(repo.logs))
	}
	if len(repo.touched) != 3 {
		t.Fatalf("touched = %d, want every successful recipient", len(repo.touched))
	}
	for _, entry := range repo.logs {
		if !entry.Success || entry.ErrorMessage != nil {
			t.Fatalf("log entry = %+v, want success without error", entry)
		}
		if entry.Kind != enums.NotificationKindPreDraw || entry.Slot != "10:00" {
			t.Fatalf("log entry = %+v", entry)
		}
	}
}

func TestDispatchPayloadShape(t *testing.T) {
	drawID := uuid.New()
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			return []models.NotificationSubscription{activeSub("https://push.example/a")}, nil
		},
	}
	draws := &fakeDrawReader{draw: &models.Draw{
		ID:     drawID,
		DrawNo: "SC050320254",
		Digit1: "1", Digit2: "2", Digit3: "3", Digit4: "4", Digit5: "5",
	}}
	sender := &fakeSender{}
	d := newTestDispatcher(t, repo, draws, sender)

	if _, err := d.Dispatch(context.Background(), enums.NotificationKindResultPublished, "17:00", &drawID); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	var payload struct {
		Title              string `json:"title"`
		Body               string `json:"body"`
		Tag                string `json:"tag"`
		RequireInteraction bool   `json:"requireInteraction"`
		Vibrate            []int  `json:"vibrate"`
		Data               struct {
			URL    string `json:"url"`
			Slot   string `json:"slot"`
			Type   string `json:"type"`
			DrawNo string `json:"drawNo"`
			Digits string `json:"digits"`
		} `json:"data"`
	}
	if err := json.Unmarshal(sender.sends[0].payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Title != "Results Published!" {
		t.Fatalf("title = %q", payload.Title)
	}
	if payload.Body != "5:00 PM draw results are now available. Tap to view. Draw #SC050320254" {
		t.Fatalf("body = %q", payload.Body)
	}
	if payload.Tag != "result_published-17:00" {
		t.Fatalf("tag = %q", payload.Tag)
	}
	if !payload.RequireInteraction {
		t.Fatal("result notifications must require interaction")
	}
	if len(payload.Vibrate) != 3 || payload.Vibrate[0] != 200 {
		t.Fatalf("vibrate = %v", payload.Vibrate)
	}
	if payload.Data.URL != "/results" || payload.Data.DrawNo != "SC050320254" || payload.Data.Digits != "12345" {
		t.Fatalf("data = %+v", payload.Data)
	}
}

func TestDispatchGoneEndpointDeactivates(t *testing.T) {
	gone := activeSub("https://push.example/gone")
	healthy := activeSub("https://push.example/ok")
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			return []models.NotificationSubscription{gone, healthy}, nil
		},
	}
	sender := &fakeSender{
		respond: func(dest webpush.Destination) (int, error) {
			if dest.Endpoint == gone.Endpoint {
				return webpush.StatusGone, errors.New("push failed: 410 Gone")
			}
			return 201, nil
		},
	}
	d := newTestDispatcher(t, repo, nil, sender)

	summary, err := d.Dispatch(context.Background(), enums.NotificationKindPreDraw, "12:00", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Successful != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want one success and one failure", summary)
	}
	if len(repo.deactivated) != 1 || repo.deactivated[0] != gone.ID {
		t.Fatalf("deactivated = %v, want only the gone subscription", repo.deactivated)
	}
	if len(repo.touched) != 1 || repo.touched[0] != healthy.ID {
		t.Fatalf("touched = %v, want only the healthy subscription", repo.touched)
	}

	var failureLogged bool
	for _, entry := range repo.logs {
		if entry.SubscriptionID == gone.ID {
			if entry.Success || entry.ErrorMessage == nil {
				t.Fatalf("gone entry = %+v, want logged failure", entry)
			}
			failureLogged = true
		}
	}
	if !failureLogged {
		t.Fatal("missing log entry for the failed attempt")
	}
}

func TestDispatchTransientFailureDoesNotDeactivate(t *testing.T) {
	sub := activeSub("https://push.example/flaky")
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			return []models.NotificationSubscription{sub}, nil
		},
	}
	sender := &fakeSender{
		respond: func(dest webpush.Destination) (int, error) {
			return 503, errors.New("push failed: 503 upstream busy")
		},
	}
	d := newTestDispatcher(t, repo, nil, sender)

	summary, err := d.Dispatch(context.Background(), enums.NotificationKindPreDraw, "14:00", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v, want one failure", summary)
	}
	if len(repo.deactivated) != 0 {
		t.Fatal("a transient failure must not deactivate the subscription")
	}
}

func TestDispatchResolveFailureAborts(t *testing.T) {
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			return nil, errors.New("db down")
		},
	}
	sender := &fakeSender{}
	d := newTestDispatcher(t, repo, nil, sender)

	if _, err := d.Dispatch(context.Background(), enums.NotificationKindPreDraw, "10:00", nil); err == nil {
		t.Fatal("expected resolve error to abort the dispatch")
	}
	if len(sender.sends) != 0 {
		t.Fatal("no pushes expected when the audience cannot be resolved")
	}
}

func TestDispatchNoRecipients(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(t, &fakeRepo{}, nil, sender)

	summary, err := d.Dispatch(context.Background(), enums.NotificationKindPreDraw, "19:00", nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Total != 0 || summary.Successful != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want zeroes", summary)
	}
	if len(sender.sends) != 0 {
		t.Fatal("no pushes expected without recipients")
	}
}

func TestDispatchMissingDrawStillSends(t *testing.T) {
	drawID := uuid.New()
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			return []models.NotificationSubscription{activeSub("https://push.example/a")}, nil
		},
	}
	sender := &fakeSender{}
	d := newTestDispatcher(t, repo, &fakeDrawReader{}, sender)

	summary, err := d.Dispatch(context.Background(), enums.NotificationKindResultPublished, "10:00", &drawID)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Successful != 1 {
		t.Fatalf("summary = %+v, want delivery despite the missing draw", summary)
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(sender.sends[0].payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Body != "10:00 AM draw results are now available. Tap to view." {
		t.Fatalf("body = %q, want no draw number suffix", payload.Body)
	}
}

func TestResultAnnouncerAdapts(t *testing.T) {
	drawID := uuid.New()
	repo := &fakeRepo{
		findActiveForSlotFn: func(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
			return []models.NotificationSubscription{activeSub("https://push.example/a")}, nil
		},
	}
	sender := &fakeSender{}
	announcer := ResultAnnouncer{Dispatcher: newTestDispatcher(t, repo, nil, sender)}

	if err := announcer.AnnounceResult(context.Background(), "12:00", drawID); err != nil {
		t.Fatalf("AnnounceResult: %v", err)
	}
	if len(sender.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.sends))
	}
}
