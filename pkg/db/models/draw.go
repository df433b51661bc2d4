package models

import (
	"time"

	"github.com/google/uuid"
)

// Draw is one scheduled drawing instance. At most one row exists per
// (date, slot) pair; the published flag only ever moves false -> true.
type Draw struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date      string    `gorm:"column:date;type:date;not null;uniqueIndex:idx_draws_date_slot,priority:1" json:"date"`
	Slot      string    `gorm:"column:slot;type:text;not null;uniqueIndex:idx_draws_date_slot,priority:2" json:"slot"`
	DrawNo    string    `gorm:"column:draw_no;type:text;not null" json:"draw_no"`
	Digit1    string    `gorm:"column:digit_1;type:char(1);not null" json:"digit_1"`
	Digit2    string    `gorm:"column:digit_2;type:char(1);not null" json:"digit_2"`
	Digit3    string    `gorm:"column:digit_3;type:char(1);not null" json:"digit_3"`
	Digit4    string    `gorm:"column:digit_4;type:char(1);not null" json:"digit_4"`
	Digit5    string    `gorm:"column:digit_5;type:char(1);not null" json:"digit_5"`
	Published bool      `gorm:"column:published;not null;default:false" json:"published"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Draw) TableName() string { return "draws" }

// Digits returns the winning number as a five character string.
func (d Draw) Digits() string {
	return d.Digit1 + d.Digit2 + d.Digit3 + d.Digit4 + d.Digit5
}
