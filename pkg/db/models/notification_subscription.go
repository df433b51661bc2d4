package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationSubscription is one registered browser push endpoint.
// Rows are deactivated, never hard-deleted.
type NotificationSubscription struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Endpoint       string     `gorm:"column:endpoint;type:text;not null;unique" json:"endpoint"`
	P256dhKey      string     `gorm:"column:p256dh_key;type:text;not null" json:"p256dh_key"`
	AuthKey        string     `gorm:"column:auth_key;type:text;not null" json:"auth_key"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastNotifiedAt *time.Time `gorm:"column:last_notified_at" json:"last_notified_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Settings *NotificationSettings `gorm:"foreignKey:SubscriptionID" json:"settings,omitempty"`
}

func (NotificationSubscription) TableName() string { return "notification_subscriptions" }
