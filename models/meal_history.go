package models

import (
	"time"

	"gorm.io/gorm"
)

// MealHistoryEntry is the append-only record written after a meal is
// accepted. The diversity manager reads a rolling window of these to
// rebuild its usage index; nothing updates them in place.
type MealHistoryEntry struct {
	gorm.Model
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	MealName      string    `json:"meal_name"`
	Ingredients   []string  `gorm:"serializer:json" json:"ingredients"`
	MealType      string    `gorm:"index" json:"meal_type"`
	CuisineType   string    `json:"cuisine_type"`
	CookingMethod string    `json:"cooking_method"`
	AteAt         time.Time `gorm:"index" json:"ate_at"`
}
