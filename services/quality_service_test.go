package services

import (
	"testing"

	"mealplanner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormedMeal() *models.Meal {
	return &models.Meal{
		Name:     "Grilled chicken with rice",
		MealType: "dinner",
		Ingredients: []models.Ingredient{
			{Name: "chicken", Amount: 200, Unit: "g"},
			{Name: "rice", Amount: 150, Unit: "g"},
			{Name: "broccoli", Amount: 100, Unit: "g"},
		},
		Calories: 550,
		Protein:  35,
		Carbs:    60,
		Fat:      15,
		Instructions: []string{
			"Grill the chicken.",
			"Cook the rice and steam the broccoli.",
			"Plate and serve.",
		},
	}
}

func stageByName(t *testing.T, report QualityReport, name string) StageResult {
	t.Helper()
	for _, s := range report.Stages {
		if s.Stage == name {
			return s
		}
	}
	t.Fatalf("stage %q not found", name)
	return StageResult{}
}

func TestValidateMealWellFormedPasses(t *testing.T) {
	pantry := []models.PantryItem{
		{Name: "chicken", Quantity: 500, Unit: "g"},
		{Name: "rice", Quantity: 1000, Unit: "g"},
		{Name: "broccoli", Quantity: 300, Unit: "g"},
	}

	report := ValidateMeal(wellFormedMeal(), pantry, nil)

	require.Len(t, report.Stages, 5)
	assert.True(t, report.OverallPass)
	assert.InDelta(t, 100.0, report.AverageConfidence, 0.0001)
	for _, s := range report.Stages {
		assert.True(t, s.Passed, "stage %s", s.Stage)
	}
}

func TestValidateMealEmptyMealFails(t *testing.T) {
	report := ValidateMeal(&models.Meal{}, nil, nil)

	structure := stageByName(t, report, "structure")
	assert.False(t, structure.Passed)
	assert.Zero(t, structure.Confidence) // -30 name, -50 ingredients, -20 calories

	assert.False(t, report.OverallPass, "more than one failed stage")
}

func TestValidateMealDietaryViolation(t *testing.T) {
	meal := wellFormedMeal()
	meal.Ingredients = append(meal.Ingredients, models.Ingredient{Name: "Cheese", Amount: 50, Unit: "g"})
	profile := &models.UserProfile{DietaryRestrictions: []string{"vegan"}}

	report := ValidateMeal(meal, nil, profile)

	dietary := stageByName(t, report, "dietary_compliance")
	assert.False(t, dietary.Passed)
	// one deduction per violated restriction, however many offenders
	assert.InDelta(t, 60.0, dietary.Confidence, 0.0001)
	require.Len(t, dietary.Issues, 1)
	assert.Contains(t, dietary.Issues[0], "vegan")
}

func TestValidateMealEmptyPantryIsInformational(t *testing.T) {
	report := ValidateMeal(wellFormedMeal(), nil, nil)

	availability := stageByName(t, report, "pantry_availability")
	assert.True(t, availability.Passed)
	assert.InDelta(t, 50.0, availability.Confidence, 0.0001)
	assert.NotEmpty(t, availability.Issues)
}

func TestValidateMealPantryMajorityMissingFails(t *testing.T) {
	pantry := []models.PantryItem{{Name: "rice", Quantity: 500, Unit: "g"}}

	report := ValidateMeal(wellFormedMeal(), pantry, nil)

	availability := stageByName(t, report, "pantry_availability")
	assert.False(t, availability.Passed) // 2 of 3 missing
	assert.InDelta(t, 33.0, availability.Confidence, 0.0001)
}

func TestValidateMealConflictingIngredients(t *testing.T) {
	meal := wellFormedMeal()
	meal.Ingredients = []models.Ingredient{
		{Name: "tuna", Amount: 150, Unit: "g"},
		{Name: "banana", Amount: 1, Unit: "piece"},
		{Name: "fish sauce", Amount: 15, Unit: "ml"},
		{Name: "chocolate", Amount: 30, Unit: "g"},
	}

	report := ValidateMeal(meal, nil, nil)

	logical := stageByName(t, report, "logical_consistency")
	assert.False(t, logical.Passed)
	assert.InDelta(t, 40.0, logical.Confidence, 0.0001) // two conflicts: 100-30-30
	require.Len(t, logical.Issues, 2)
}

func TestValidateMealNutritionGoals(t *testing.T) {
	t.Run("weight loss calorie ceiling", func(t *testing.T) {
		meal := wellFormedMeal()
		meal.Calories = 800
		profile := &models.UserProfile{HealthGoals: []string{"weight_loss"}}

		nutrition := stageByName(t, ValidateMeal(meal, nil, profile), "nutrition_balance")
		assert.InDelta(t, 85.0, nutrition.Confidence, 0.0001)
		assert.True(t, nutrition.Passed)
	})

	t.Run("muscle gain protein floor", func(t *testing.T) {
		meal := wellFormedMeal()
		meal.Protein = 10
		profile := &models.UserProfile{HealthGoals: []string{"muscle_gain"}}

		nutrition := stageByName(t, ValidateMeal(meal, nil, profile), "nutrition_balance")
		assert.InDelta(t, 85.0, nutrition.Confidence, 0.0001)
	})
}

func TestValidateMealStagePanicBecomesFailure(t *testing.T) {
	// nil meal with restrictions makes the dietary stage dereference nil;
	// the gate must convert that into a failing stage, not a crash.
	profile := &models.UserProfile{DietaryRestrictions: []string{"vegan"}}

	report := ValidateMeal(nil, nil, profile)

	dietary := stageByName(t, report, "dietary_compliance")
	assert.False(t, dietary.Passed)
	assert.Zero(t, dietary.Confidence)
	require.NotEmpty(t, dietary.Issues)
	assert.Contains(t, dietary.Issues[0], "internal validation error")
	assert.False(t, report.OverallPass)
}

func TestValidateMealDeterministic(t *testing.T) {
	meal := wellFormedMeal()
	pantry := []models.PantryItem{{Name: "chicken", Quantity: 500, Unit: "g"}}
	profile := &models.UserProfile{DietaryRestrictions: []string{"gluten-free"}}

	first := ValidateMeal(meal, pantry, profile)
	second := ValidateMeal(meal, pantry, profile)

	assert.Equal(t, first, second)
}
