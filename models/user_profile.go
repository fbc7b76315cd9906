package models

import "gorm.io/gorm"

// UserProfile is the raw profile the analyzer derives targets from.
// Read-only input to generation.
type UserProfile struct {
	gorm.Model
	UserID        uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"` // "male" | "female"
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"` // sedentary..extra_active
	FamilySize    int     `json:"family_size"`
	SkillLevel    string  `json:"skill_level"` // beginner|intermediate|expert

	HealthGoals         []string `gorm:"serializer:json" json:"health_goals"`
	DietaryRestrictions []string `gorm:"serializer:json" json:"dietary_restrictions"`
	Allergens           []string `gorm:"serializer:json" json:"allergens"`
	CuisinePreferences  []string `gorm:"serializer:json" json:"cuisine_preferences"`
}
