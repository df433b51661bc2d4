package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages push subscription lifecycle and per-slot settings.
type Service interface {
	Subscribe(ctx context.Context, params SubscribeParams) (*models.NotificationSubscription, error)
	UpdateSettings(ctx context.Context, subscriptionID uuid.UUID, update SettingsUpdate) (*models.NotificationSettings, error)
	Unsubscribe(ctx context.Context, subscriptionID uuid.UUID) error
}

// SubscribeParams carry the browser push registration.
type SubscribeParams struct {
	Endpoint  string
	P256dhKey string
	AuthKey   string
}

// SettingsUpdate toggles slot opt-ins. Nil fields keep the stored value.
type SettingsUpdate struct {
	Slot1000 *bool `json:"slot_10_00"`
	Slot1200 *bool `json:"slot_12_00"`
	Slot1400 *bool `json:"slot_14_00"`
	Slot1700 *bool `json:"slot_17_00"`
	Slot1900 *bool `json:"slot_19_00"`
}

type service struct {
	repo Repository
}

// NewService wires subscription dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func defaultSettings(subscriptionID uuid.UUID) *models.NotificationSettings {
	return &models.NotificationSettings{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		Slot1000:       true,
		Slot1200:       true,
		Slot1400:       true,
		Slot1700:       true,
		Slot1900:       true,
	}
}

// Subscribe registers a push endpoint. Registering an endpoint twice
// reactivates the existing row and refreshes its keys instead of creating a
// duplicate.
func (s *service) Subscribe(ctx context.Context, params SubscribeParams) (*models.NotificationSubscription, error) {
	if params.Endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "endpoint required")
	}
	if params.P256dhKey == "" || params.AuthKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "p256dh and auth keys required")
	}

	existing, err := s.repo.FindByEndpoint(ctx, params.Endpoint)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}

	if existing != nil {
		if err := s.repo.Reactivate(ctx, existing.ID, params.P256dhKey, params.AuthKey); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reactivate subscription")
		}
		if existing.Settings == nil {
			settings := defaultSettings(existing.ID)
			if err := s.repo.SaveSettings(ctx, settings); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default settings")
			}
			existing.Settings = settings
		}
		existing.IsActive = true
		existing.P256dhKey = params.P256dhKey
		existing.AuthKey = params.AuthKey
		return existing, nil
	}

	sub := &models.NotificationSubscription{
		ID:        uuid.New(),
		Endpoint:  params.Endpoint,
		P256dhKey: params.P256dhKey,
		AuthKey:   params.AuthKey,
		IsActive:  true,
	}
	sub.Settings = defaultSettings(sub.ID)
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	return sub, nil
}

func (s *service) UpdateSettings(ctx context.Context, subscriptionID uuid.UUID, update SettingsUpdate) (*models.NotificationSettings, error) {
	if subscriptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}

	sub, err := s.repo.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}

	settings := sub.Settings
	if settings == nil {
		settings = defaultSettings(sub.ID)
	}
	applyToggle(&settings.Slot1000, update.Slot1000)
	applyToggle(&settings.Slot1200, update.Slot1200)
	applyToggle(&settings.Slot1400, update.Slot1400)
	applyToggle(&settings.Slot1700, update.Slot1700)
	applyToggle(&settings.Slot1900, update.Slot1900)

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return settings, nil
}

func applyToggle(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}

// Unsubscribe deactivates a subscription. Deactivating an already inactive
// subscription is a no-op, not an error.
func (s *service) Unsubscribe(ctx context.Context, subscriptionID uuid.UUID) error {
	if subscriptionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}

	updated, err := s.repo.Deactivate(ctx, subscriptionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate subscription")
	}
	if updated {
		return nil
	}

	if _, err := s.repo.FindByID(ctx, subscriptionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}
	return nil
}
