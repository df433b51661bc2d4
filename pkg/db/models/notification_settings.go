package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationSettings holds the per-slot opt-in flags for one subscription.
// One row per subscription; every flag defaults to true at creation.
type NotificationSettings struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriptionID uuid.UUID `gorm:"column:subscription_id;type:uuid;not null;unique" json:"subscription_id"`
	Slot1000       bool      `gorm:"column:slot_10_00;not null;default:true" json:"slot_10_00"`
	Slot1200       bool      `gorm:"column:slot_12_00;not null;default:true" json:"slot_12_00"`
	Slot1400       bool      `gorm:"column:slot_14_00;not null;default:true" json:"slot_14_00"`
	Slot1700       bool      `gorm:"column:slot_17_00;not null;default:true" json:"slot_17_00"`
	Slot1900       bool      `gorm:"column:slot_19_00;not null;default:true" json:"slot_19_00"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (NotificationSettings) TableName() string { return "notification_settings" }
