package models

import "time"

// Alert is a user-visible notification, e.g. an urgent pantry depletion.
type Alert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Type      string    `gorm:"size:20" json:"type"` // "depletion" | "info"
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
