package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"github.com/suvarnachakram/results-backend/pkg/enums"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"github.com/suvarnachakram/results-backend/pkg/logger"
	"github.com/suvarnachakram/results-backend/pkg/webpush"
	"gorm.io/gorm"
)

// DrawReader resolves the draw referenced by a result notification.
type DrawReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error)
}

// Dispatcher fans a notification out to every opted-in subscription.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind enums.NotificationKind, slot string, drawID *uuid.UUID) (*Summary, error)
}

// Summary counts one dispatch pass.
type Summary struct {
	Type       enums.NotificationKind `json:"type"`
	Slot       string                 `json:"slot"`
	Total      int                    `json:"total"`
	Successful int                    `json:"successful"`
	Failed     int                    `json:"failed"`
}

// DispatcherParams configure the dispatcher.
type DispatcherParams struct {
	Logger *logger.Logger
	Repo   Repository
	Draws  DrawReader
	Sender webpush.Sender
	Clock  *schedule.Clock
	Push   config.PushConfig
}

type dispatcher struct {
	logg   *logger.Logger
	repo   Repository
	draws  DrawReader
	sender webpush.Sender
	clock  *schedule.Clock
	push   config.PushConfig
	now    func() time.Time
}

// NewDispatcher wires dispatch dependencies.
func NewDispatcher(params DispatcherParams) (Dispatcher, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Draws == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draw reader required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "push sender required")
	}
	if params.Clock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "schedule clock required")
	}
	return &dispatcher{
		logg:   params.Logger,
		repo:   params.Repo,
		draws:  params.Draws,
		sender: params.Sender,
		clock:  params.Clock,
		push:   params.Push,
		now:    time.Now,
	}, nil
}

// Dispatch resolves the audience for a slot, renders the payload once, and
// delivers it to every recipient concurrently. Audience resolution errors
// abort the pass; per-recipient delivery failures only count against the
// summary.
func (d *dispatcher) Dispatch(ctx context.Context, kind enums.NotificationKind, slot string, drawID *uuid.UUID) (*Summary, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type")
	}
	if !d.clock.Contains(slot) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown slot")
	}

	logCtx := d.logg.WithFields(ctx, map[string]any{"type": string(kind), "slot": slot})

	drawNo, digits := d.resolveDraw(logCtx, drawID)

	subs, err := d.repo.FindActiveForSlot(ctx, slot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve recipients")
	}

	summary := &Summary{Type: kind, Slot: slot, Total: len(subs)}
	if len(subs) == 0 {
		d.logg.Info(logCtx, "no active subscriptions for slot")
		return summary, nil
	}

	payload, err := buildPayload(d.push, kind, slot, drawNo, digits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render payload")
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.NotificationSubscription) {
			defer wg.Done()
			ok := d.deliver(ctx, sub, kind, slot, drawID, payload)
			mu.Lock()
			if ok {
				summary.Successful++
			} else {
				summary.Failed++
			}
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	d.logg.Info(d.logg.WithFields(logCtx, map[string]any{
		"total":      summary.Total,
		"successful": summary.Successful,
		"failed":     summary.Failed,
	}), "notification dispatch complete")
	return summary, nil
}

// resolveDraw loads the draw's number and digits for the payload. A missing
// or unreadable draw only trims the message, it never blocks the dispatch.
func (d *dispatcher) resolveDraw(ctx context.Context, drawID *uuid.UUID) (string, string) {
	if drawID == nil {
		return "", ""
	}
	row, err := d.draws.FindByID(ctx, *drawID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			d.logg.Warn(ctx, "draw lookup failed: "+err.Error())
		}
		return "", ""
	}
	return row.DrawNo, row.Digits()
}

func (d *dispatcher) deliver(ctx context.Context, sub models.NotificationSubscription, kind enums.NotificationKind, slot string, drawID *uuid.UUID, payload []byte) bool {
	status, err := d.sender.Send(ctx, webpush.Destination{
		Endpoint:  sub.Endpoint,
		P256dhKey: sub.P256dhKey,
		AuthKey:   sub.AuthKey,
	}, payload)

	success := err == nil
	entry := models.NotificationLog{
		ID:             uuid.New(),
		SubscriptionID: sub.ID,
		Kind:           kind,
		Slot:           slot,
		DrawID:         drawID,
		Success:        success,
		SentAt:         d.now().UTC(),
	}
	if err != nil {
		msg := err.Error()
		entry.ErrorMessage = &msg
	}
	if logErr := d.repo.AppendLog(ctx, &entry); logErr != nil {
		d.logg.Warn(ctx, "append notification log: "+logErr.Error())
	}

	if success {
		if touchErr := d.repo.TouchLastNotified(ctx, sub.ID, d.now().UTC()); touchErr != nil {
			d.logg.Warn(ctx, "touch last notified: "+touchErr.Error())
		}
		return true
	}

	if status == webpush.StatusGone {
		if _, deactErr := d.repo.Deactivate(ctx, sub.ID); deactErr != nil {
			d.logg.Warn(ctx, "deactivate gone subscription: "+deactErr.Error())
		} else {
			d.logg.Info(d.logg.WithField(ctx, "subscription_id", sub.ID.String()), "subscription endpoint gone, deactivated")
		}
	}
	return false
}

// ResultAnnouncer adapts the dispatcher to the publisher's announcement
// hook.
type ResultAnnouncer struct {
	Dispatcher Dispatcher
}

func (a ResultAnnouncer) AnnounceResult(ctx context.Context, slot string, drawID uuid.UUID) error {
	_, err := a.Dispatcher.Dispatch(ctx, enums.NotificationKindResultPublished, slot, &drawID)
	return err
}
