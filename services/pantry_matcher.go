package services

import (
	"strings"

	"mealplanner/models"
)

// IngredientMatch pairs a required recipe line with the pantry item it
// resolved to. Sufficient compares quantities only when the units agree;
// unit conversion is the consumption engine's job, not the matcher's.
type IngredientMatch struct {
	Ingredient models.Ingredient `json:"ingredient"`
	PantryItem models.PantryItem `json:"pantry_item"`
	Sufficient bool              `json:"sufficient"`
}

type MatchResult struct {
	MatchCount       int               `json:"match_count"`
	TotalIngredients int               `json:"total_ingredients"`
	MatchPercentage  float64           `json:"match_percentage"`
	Missing          []string          `json:"missing"`
	Available        []IngredientMatch `json:"available"`
}

// MatchIngredients resolves each required recipe line against the pantry
// snapshot. Precedence, first hit wins: exact normalized name, then
// bidirectional substring containment, then a category-keyword
// heuristic (both sides look like the same protein, etc.).
func MatchIngredients(required []models.Ingredient, pantry []models.PantryItem) MatchResult {
	res := MatchResult{
		TotalIngredients: len(required),
		Missing:          []string{},
		Available:        []IngredientMatch{},
	}
	if len(required) == 0 {
		return res
	}

	for _, ing := range required {
		item, ok := findMatch(ing, pantry)
		if !ok {
			res.Missing = append(res.Missing, ing.Name)
			continue
		}
		res.MatchCount++
		res.Available = append(res.Available, IngredientMatch{
			Ingredient: ing,
			PantryItem: item,
			Sufficient: sameUnit(ing.Unit, item.Unit) && item.Quantity >= ing.Amount,
		})
	}

	res.MatchPercentage = float64(res.MatchCount) / float64(res.TotalIngredients) * 100
	return res
}

func findMatch(ing models.Ingredient, pantry []models.PantryItem) (models.PantryItem, bool) {
	want := normalizeName(ing.Name)

	for _, item := range pantry {
		if normalizeName(item.Name) == want {
			return item, true
		}
	}
	for _, item := range pantry {
		have := normalizeName(item.Name)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return item, true
		}
	}
	for _, item := range pantry {
		if !proteinCategory(ing.Category) || !proteinCategory(item.Category) {
			continue
		}
		if sharedKeyword(want, normalizeName(item.Name), proteinKeywords) {
			return item, true
		}
	}
	return models.PantryItem{}, false
}

func proteinCategory(cat string) bool {
	return strings.EqualFold(strings.TrimSpace(cat), "protein")
}

func sameUnit(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}
