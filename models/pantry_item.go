package models

import (
	"time"

	"gorm.io/gorm"
)

// PantryItem is one tracked inventory line owned by a user.
// Quantity only goes down through the consumption engine; restocks
// happen through the pantry endpoints.
type PantryItem struct {
	gorm.Model
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Name      string     `gorm:"not null" json:"name"`
	Category  string     `json:"category"` // "Protein" | "Vegetables" | ...
	Quantity  float64    `json:"quantity"` // never negative
	Unit      string     `json:"unit"`     // "g" | "ml" | "piece" | ...
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PantryItemUsage is the derived usage index for a pantry item.
// It lives next to the item rather than on it so that reads of the
// pantry snapshot stay cheap and the consumption engine owns the writes.
type PantryItemUsage struct {
	gorm.Model
	PantryItemID uint      `gorm:"uniqueIndex;not null" json:"pantry_item_id"`
	LastUsedAt   time.Time `json:"last_used_at"`
	UseCount     int       `json:"use_count"`
}
