package services

import (
	"testing"
	"time"

	"mealplanner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyEntry(daysAgo int, mealType, cuisine, method string, ingredients ...string) models.MealHistoryEntry {
	return models.MealHistoryEntry{
		Ingredients:   ingredients,
		MealType:      mealType,
		CuisineType:   cuisine,
		CookingMethod: method,
		AteAt:         time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestBuildUsageIndex(t *testing.T) {
	entries := []models.MealHistoryEntry{
		historyEntry(1, "lunch", "asian", "stir-fried", "Chicken", "rice"),
		historyEntry(2, "dinner", "italian", "baked", "chicken", "pasta"),
	}

	idx := BuildUsageIndex(entries, 7*24*time.Hour)

	chicken, ok := idx.Usage["chicken"]
	require.True(t, ok, "names should be normalized into one entry")
	assert.Equal(t, 2, chicken.UseCount)
	assert.ElementsMatch(t, []string{"lunch", "dinner"}, chicken.MealTypes)
	assert.ElementsMatch(t, []string{"asian", "italian"}, chicken.CuisineTypes)
	assert.WithinDuration(t, entries[0].AteAt, chicken.LastUsed, time.Second)

	rice := idx.Usage["rice"]
	require.NotNil(t, rice)
	assert.Equal(t, 1, rice.UseCount)
}

func TestFilteredPantryItemsRotation(t *testing.T) {
	// chicken eaten twice at lunch within the window
	entries := []models.MealHistoryEntry{
		historyEntry(1, "lunch", "asian", "stir-fried", "chicken"),
		historyEntry(3, "lunch", "american", "grilled", "chicken"),
	}
	idx := BuildUsageIndex(entries, 7*24*time.Hour)

	pantry := []models.PantryItem{
		{Name: "chicken", Quantity: 500, Unit: "g"},
		{Name: "broccoli", Quantity: 300, Unit: "g"},
		{Name: "rice", Quantity: 0, Unit: "g"},
	}

	lunch := FilteredPantryItems(pantry, "lunch", idx)
	assert.Len(t, lunch, 1, "rotated-out chicken and empty rice are dropped")
	assert.Equal(t, "broccoli", lunch[0].Name)

	// the rotation is per meal slot: chicken is still fine for dinner
	dinner := FilteredPantryItems(pantry, "dinner", idx)
	names := []string{}
	for _, item := range dinner {
		names = append(names, item.Name)
	}
	assert.ElementsMatch(t, []string{"chicken", "broccoli"}, names)
}

func TestFilteredPantryItemsSingleUseKept(t *testing.T) {
	entries := []models.MealHistoryEntry{
		historyEntry(1, "lunch", "asian", "stir-fried", "chicken"),
	}
	idx := BuildUsageIndex(entries, 7*24*time.Hour)

	pantry := []models.PantryItem{{Name: "chicken", Quantity: 500, Unit: "g"}}
	assert.Len(t, FilteredPantryItems(pantry, "lunch", idx), 1,
		"one use is not enough to rotate an ingredient out")
}

func TestNoveltyScore(t *testing.T) {
	entries := []models.MealHistoryEntry{
		historyEntry(1, "lunch", "asian", "stir-fried", "chicken", "rice"),
	}
	idx := BuildUsageIndex(entries, 7*24*time.Hour)

	items := []models.PantryItem{
		{Name: "chicken"}, {Name: "broccoli"}, {Name: "quinoa"}, {Name: "tofu"},
	}
	assert.InDelta(t, 75.0, noveltyScore(items, idx), 0.0001)
	assert.InDelta(t, 100.0, noveltyScore(items, nil), 0.0001)
}

func TestGenerateCombinations(t *testing.T) {
	svc := NewDiversityService(nil)
	pantry := []models.PantryItem{
		{Name: "chicken breast", Quantity: 500, Unit: "g"},
		{Name: "tofu", Quantity: 300, Unit: "g"},
		{Name: "broccoli", Quantity: 400, Unit: "g"},
		{Name: "spinach", Quantity: 200, Unit: "g"},
		{Name: "rice", Quantity: 1000, Unit: "g"},
		{Name: "quinoa", Quantity: 500, Unit: "g"},
		{Name: "olive oil", Quantity: 250, Unit: "ml"},
		{Name: "paprika", Quantity: 50, Unit: "g"},
	}

	combos := svc.GenerateCombinations(pantry, "dinner", AnalyzeProfile(nil), nil, 3)

	require.NotEmpty(t, combos)
	assert.LessOrEqual(t, len(combos), 3)
	for i, c := range combos {
		assert.GreaterOrEqual(t, len(c.Items), minComboVariety)
		assert.LessOrEqual(t, len(c.Items), maxComboIngredients)
		assert.NotEmpty(t, c.Complexity)
		assert.NotEmpty(t, c.CookingMethod)
		if i > 0 {
			assert.GreaterOrEqual(t, combos[i-1].Score, c.Score, "combos sorted by score")
		}
	}

	// full protein+vegetable+grain coverage scores a perfect balance
	top := combos[0]
	assert.InDelta(t, 100.0, top.NutritionBalance, 0.0001)
}

func TestGenerateCombinationsSparsePantry(t *testing.T) {
	svc := NewDiversityService(nil)
	pantry := []models.PantryItem{
		{Name: "rice", Quantity: 500, Unit: "g"},
		{Name: "salt", Quantity: 100, Unit: "g"},
	}

	assert.Empty(t, svc.GenerateCombinations(pantry, "lunch", AnalyzeProfile(nil), nil, 3),
		"too few distinct items to reach minimum variety")
}

func TestRecentMethods(t *testing.T) {
	entries := []models.MealHistoryEntry{
		historyEntry(1, "dinner", "asian", "stir-fried", "tofu"),
		historyEntry(2, "dinner", "italian", "Baked", "pasta"),
		historyEntry(3, "lunch", "american", "stir-fried", "rice"),
		historyEntry(4, "dinner", "mexican", "grilled", "beef"),
	}
	idx := BuildUsageIndex(entries, 7*24*time.Hour)

	assert.Equal(t, []string{"stir-fried", "baked"}, idx.RecentMethods(2))
}

func TestGetDiversityRecommendations(t *testing.T) {
	entries := []models.MealHistoryEntry{
		historyEntry(1, "lunch", "asian", "stir-fried", "chicken"),
		historyEntry(2, "dinner", "asian", "stir-fried", "chicken"),
		historyEntry(3, "lunch", "italian", "baked", "chicken"),
	}
	idx := BuildUsageIndex(entries, 7*24*time.Hour)

	rec := GetDiversityRecommendations(idx)

	assert.Equal(t, []string{"chicken"}, rec.AvoidIngredients)
	assert.NotContains(t, rec.UnusedCuisines, "asian")
	assert.NotContains(t, rec.UnusedCuisines, "italian")
	assert.Contains(t, rec.UnusedCuisines, "mexican")
	assert.NotContains(t, rec.UnusedMethods, "stir-fried")
	assert.Contains(t, rec.UnusedMethods, "steamed")
	assert.NotEmpty(t, rec.VarietyTips)
}

func TestGetDiversityRecommendationsNilIndex(t *testing.T) {
	rec := GetDiversityRecommendations(nil)

	assert.Empty(t, rec.AvoidIngredients)
	assert.ElementsMatch(t, cuisineCatalog, rec.UnusedCuisines)
	assert.ElementsMatch(t, cookingMethodCatalog, rec.UnusedMethods)
}
