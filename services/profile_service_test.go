package services

import (
	"testing"

	"mealplanner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeProfileNilDefaults(t *testing.T) {
	d := AnalyzeProfile(nil)

	assert.Equal(t, 2000.0, d.DailyCalorieTarget)
	assert.Equal(t, 5, d.Adventurousness)
	assert.Equal(t, 5, d.ConveniencePreference)
	assert.Equal(t, 5, d.HealthConsciousness)
	assert.InDelta(t, 2000*0.25/4, d.MacroTargets.Protein, 0.0001)
	assert.InDelta(t, 2000*0.45/4, d.MacroTargets.Carbs, 0.0001)
	assert.InDelta(t, 2000*0.30/9, d.MacroTargets.Fat, 0.0001)
}

func TestAnalyzeProfileCalorieFormula(t *testing.T) {
	p := &models.UserProfile{
		Age: 30, Gender: "male", HeightCm: 180, WeightKg: 80,
		ActivityLevel: "moderate",
	}

	d := AnalyzeProfile(p)

	// Mifflin-St Jeor male: 10*80 + 6.25*180 - 5*30 + 5 = 1780, x1.55
	assert.InDelta(t, 1780*1.55, d.DailyCalorieTarget, 0.0001)
}

func TestAnalyzeProfileFemaleOffset(t *testing.T) {
	p := &models.UserProfile{
		Age: 25, Gender: "female", HeightCm: 165, WeightKg: 60,
		ActivityLevel: "sedentary",
	}

	d := AnalyzeProfile(p)

	// 10*60 + 6.25*165 - 5*25 - 161 = 1345.25, x1.2
	assert.InDelta(t, 1345.25*1.2, d.DailyCalorieTarget, 0.0001)
}

func TestAnalyzeProfileUnknownActivityFallsBackToSedentary(t *testing.T) {
	base := &models.UserProfile{Age: 30, Gender: "male", HeightCm: 180, WeightKg: 80}

	unknown := *base
	unknown.ActivityLevel = "couch_potato"
	sedentary := *base
	sedentary.ActivityLevel = "sedentary"

	assert.Equal(t, AnalyzeProfile(&sedentary).DailyCalorieTarget, AnalyzeProfile(&unknown).DailyCalorieTarget)
}

func TestAnalyzeProfileGoalAdjustments(t *testing.T) {
	base := models.UserProfile{
		Age: 30, Gender: "male", HeightCm: 180, WeightKg: 80,
		ActivityLevel: "moderate",
	}
	neutral := AnalyzeProfile(&base)

	loss := base
	loss.HealthGoals = []string{"weight_loss"}
	dLoss := AnalyzeProfile(&loss)
	assert.InDelta(t, neutral.DailyCalorieTarget*0.85, dLoss.DailyCalorieTarget, 0.0001)
	// weight_loss shifts macros to 30/35/35
	assert.InDelta(t, dLoss.DailyCalorieTarget*0.30/4, dLoss.MacroTargets.Protein, 0.0001)

	gain := base
	gain.HealthGoals = []string{"muscle_gain"}
	dGain := AnalyzeProfile(&gain)
	assert.InDelta(t, neutral.DailyCalorieTarget*1.15, dGain.DailyCalorieTarget, 0.0001)
}

func TestMealCalorieTarget(t *testing.T) {
	d := DetailedProfile{DailyCalorieTarget: 2000}

	assert.InDelta(t, 500, d.MealCalorieTarget("breakfast"), 0.0001)
	assert.InDelta(t, 700, d.MealCalorieTarget("lunch"), 0.0001)
	assert.InDelta(t, 700, d.MealCalorieTarget("Dinner"), 0.0001)
	assert.InDelta(t, 100, d.MealCalorieTarget("snack"), 0.0001)
	// unknown meal type defaults to the breakfast share
	assert.InDelta(t, 500, d.MealCalorieTarget("brunch"), 0.0001)
}

func TestPersonalityScores(t *testing.T) {
	t.Run("adventurous expert", func(t *testing.T) {
		p := &models.UserProfile{
			SkillLevel:         "expert",
			CuisinePreferences: []string{"thai", "indian", "mexican", "italian", "french", "asian"},
		}
		assert.Equal(t, 9, AnalyzeProfile(p).Adventurousness)
	})

	t.Run("cautious beginner", func(t *testing.T) {
		p := &models.UserProfile{SkillLevel: "beginner"}
		assert.Equal(t, 4, AnalyzeProfile(p).Adventurousness)
	})

	t.Run("convenience for active large family", func(t *testing.T) {
		p := &models.UserProfile{ActivityLevel: "active", FamilySize: 4}
		assert.Equal(t, 8, AnalyzeProfile(p).ConveniencePreference)
	})

	t.Run("single health goal bump applies once", func(t *testing.T) {
		// heart_health alone: 5 + 2, the n>1 bonus does not fire
		p := &models.UserProfile{HealthGoals: []string{"heart_health"}}
		assert.Equal(t, 7, AnalyzeProfile(p).HealthConsciousness)
	})

	t.Run("scores clamp at 10", func(t *testing.T) {
		p := &models.UserProfile{
			HealthGoals:         []string{"heart_health", "weight_loss", "digestive_health", "blood_sugar_control"},
			DietaryRestrictions: []string{"vegan"},
			Allergens:           []string{"peanut"},
		}
		assert.Equal(t, 10, AnalyzeProfile(p).HealthConsciousness)
	})
}

func TestAnalyzeProfileFiberTarget(t *testing.T) {
	p := &models.UserProfile{Age: 30, Gender: "male", HeightCm: 180, WeightKg: 80}
	require.Equal(t, 25.0, AnalyzeProfile(p).MacroTargets.Fiber)

	p.HealthGoals = []string{"digestive_health"}
	assert.Equal(t, 35.0, AnalyzeProfile(p).MacroTargets.Fiber)
}
