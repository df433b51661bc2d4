package notifications

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/pkg/db/models"
	"gorm.io/gorm"
)

var slotPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// settingsColumn maps a slot like "10:00" to its opt-in column
// "slot_10_00". The pattern guard keeps arbitrary input out of the query.
func settingsColumn(slot string) (string, error) {
	if !slotPattern.MatchString(slot) {
		return "", fmt.Errorf("invalid slot %q", slot)
	}
	return "slot_" + strings.ReplaceAll(slot, ":", "_"), nil
}

// Repository exposes persistence helpers for push subscriptions, their
// per-slot settings, and the delivery log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.NotificationSubscription, error)
	FindByEndpoint(ctx context.Context, endpoint string) (*models.NotificationSubscription, error)
	FindActiveForSlot(ctx context.Context, slot string) ([]models.NotificationSubscription, error)
	Create(ctx context.Context, sub *models.NotificationSubscription) error
	Reactivate(ctx context.Context, id uuid.UUID, p256dh, auth string) error
	SaveSettings(ctx context.Context, settings *models.NotificationSettings) error
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	TouchLastNotified(ctx context.Context, id uuid.UUID, now time.Time) error
	AppendLog(ctx context.Context, log *models.NotificationLog) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.NotificationSubscription, error) {
	var sub models.NotificationSubscription
	err := r.db.WithContext(ctx).
		Preload("Settings").
		First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) FindByEndpoint(ctx context.Context, endpoint string) (*models.NotificationSubscription, error) {
	var sub models.NotificationSubscription
	err := r.db.WithContext(ctx).
		Preload("Settings").
		First(&sub, "endpoint = ?", endpoint).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindActiveForSlot returns active subscriptions whose settings opt into
// the given slot.
func (r *repositoryImpl) FindActiveForSlot(ctx context.Context, slot string) ([]models.NotificationSubscription, error) {
	column, err := settingsColumn(slot)
	if err != nil {
		return nil, err
	}

	var subs []models.NotificationSubscription
	err = r.db.WithContext(ctx).
		Joins("JOIN notification_settings ON notification_settings.subscription_id = notification_subscriptions.id").
		Where("notification_subscriptions.is_active = ?", true).
		Where("notification_settings."+column+" = ?", true).
		Find(&subs).Error
	return subs, err
}

func (r *repositoryImpl) Create(ctx context.Context, sub *models.NotificationSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Reactivate flips a subscription back to active and refreshes its crypto
// keys, which rotate when the browser re-subscribes.
func (r *repositoryImpl) Reactivate(ctx context.Context, id uuid.UUID, p256dh, auth string) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationSubscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  true,
			"p256dh_key": p256dh,
			"auth_key":   auth,
		}).Error
}

func (r *repositoryImpl) SaveSettings(ctx context.Context, settings *models.NotificationSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *repositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationSubscription{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) TouchLastNotified(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationSubscription{}).
		Where("id = ?", id).
		UpdateColumn("last_notified_at", now).Error
}

func (r *repositoryImpl) AppendLog(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
