package models

import (
	"time"

	"gorm.io/gorm"
)

// ConsumptionRecord is the append-only audit trail of pantry decrements.
type ConsumptionRecord struct {
	gorm.Model
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	PantryItemID     uint      `gorm:"index;not null" json:"pantry_item_id"`
	RecipeID         string    `json:"recipe_id"` // meal id the decrement belongs to
	IngredientName   string    `json:"ingredient_name"`
	ConsumedQuantity float64   `json:"consumed_quantity"`
	Unit             string    `json:"unit"`
	Date             time.Time `gorm:"index" json:"date"`
}
