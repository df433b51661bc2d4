package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/suvarnachakram/results-backend/pkg/enums"
)

// NotificationLog is an append-only record of one delivery attempt.
// Written for observability only; nothing reads it back.
type NotificationLog struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriptionID uuid.UUID              `gorm:"column:subscription_id;type:uuid;not null" json:"subscription_id"`
	Kind           enums.NotificationKind `gorm:"column:notification_type;type:text;not null" json:"notification_type"`
	Slot           string                 `gorm:"column:slot;type:text;not null" json:"slot"`
	DrawID         *uuid.UUID             `gorm:"column:draw_id;type:uuid" json:"draw_id,omitempty"`
	Success        bool                   `gorm:"column:success;not null" json:"success"`
	ErrorMessage   *string                `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	SentAt         time.Time              `gorm:"column:sent_at;autoCreateTime" json:"sent_at"`
}

func (NotificationLog) TableName() string { return "notification_logs" }
