package services

import (
	"fmt"
	"math"
	"strings"

	"mealplanner/models"
)

// StageResult is the outcome of one quality-control stage. Stages never
// return errors; anything that goes wrong inside a stage is converted
// into a synthetic failing result.
type StageResult struct {
	Stage      string   `json:"stage"`
	Passed     bool     `json:"passed"`
	Confidence float64  `json:"confidence"` // 0-100
	Issues     []string `json:"issues"`
}

type QualityReport struct {
	Stages            []StageResult `json:"stages"`
	AverageConfidence float64       `json:"average_confidence"`
	OverallPass       bool          `json:"overall_pass"`
}

// Ingredient-name keywords that violate a dietary restriction.
var restrictionKeywords = map[string][]string{
	"vegetarian":  {"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "bacon", "turkey", "lamb"},
	"vegan":       {"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "bacon", "turkey", "lamb", "egg", "milk", "cheese", "butter", "yogurt", "cream", "honey"},
	"gluten-free": {"wheat", "flour", "bread", "pasta", "noodle", "barley", "rye", "couscous"},
	"dairy-free":  {"milk", "cheese", "butter", "yogurt", "cream", "mozzarella", "parmesan"},
}

// Ingredient pairs that almost never belong in one dish.
var conflictingPairs = [][2]string{
	{"fish", "chocolate"},
	{"tuna", "banana"},
	{"pickle", "ice cream"},
	{"yogurt", "fish"},
	{"watermelon", "garlic"},
	{"milk", "lemon"},
}

// ValidateMeal runs the five-stage quality gate over a candidate meal.
// Pure given identical inputs: re-running on the same meal and context
// yields the same report.
func ValidateMeal(meal *models.Meal, pantry []models.PantryItem, profile *models.UserProfile) QualityReport {
	stages := []StageResult{
		runStage("structure", func() StageResult { return checkStructure(meal) }),
		runStage("pantry_availability", func() StageResult { return checkPantryAvailability(meal, pantry) }),
		runStage("dietary_compliance", func() StageResult { return checkDietaryCompliance(meal, profile) }),
		runStage("logical_consistency", func() StageResult { return checkLogicalConsistency(meal) }),
		runStage("nutrition_balance", func() StageResult { return checkNutritionBalance(meal, profile) }),
	}

	var total float64
	failed := 0
	for _, s := range stages {
		total += s.Confidence
		if !s.Passed {
			failed++
		}
	}
	avg := total / float64(len(stages))

	return QualityReport{
		Stages:            stages,
		AverageConfidence: avg,
		OverallPass:       avg >= 70 && failed <= 1,
	}
}

// runStage guards a stage against internal panics. A panicking stage
// becomes a failing result with confidence 0 instead of taking down the
// whole gate.
func runStage(name string, fn func() StageResult) (result StageResult) {
	defer func() {
		if r := recover(); r != nil {
			result = StageResult{
				Stage:      name,
				Passed:     false,
				Confidence: 0,
				Issues:     []string{fmt.Sprintf("internal validation error: %v", r)},
			}
		}
	}()
	result = fn()
	result.Stage = name
	return result
}

func checkStructure(meal *models.Meal) StageResult {
	res := StageResult{Confidence: 100, Issues: []string{}}
	if meal == nil {
		return StageResult{Confidence: 0, Issues: []string{"no meal supplied"}}
	}
	if strings.TrimSpace(meal.Name) == "" {
		res.Confidence -= 30
		res.Issues = append(res.Issues, "meal has no name")
	}
	if len(meal.Ingredients) == 0 {
		res.Confidence -= 50
		res.Issues = append(res.Issues, "meal has no ingredients")
	}
	if meal.Calories <= 0 {
		res.Confidence -= 20
		res.Issues = append(res.Issues, "calories missing or non-positive")
	}
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	res.Passed = res.Confidence >= 70
	return res
}

func checkPantryAvailability(meal *models.Meal, pantry []models.PantryItem) StageResult {
	res := StageResult{Issues: []string{}}
	if len(pantry) == 0 {
		res.Confidence = 50
		res.Passed = true
		res.Issues = append(res.Issues, "no pantry snapshot supplied; availability not verified")
		return res
	}
	if meal == nil || len(meal.Ingredients) == 0 {
		res.Confidence = 0
		res.Issues = append(res.Issues, "no ingredients to verify")
		return res
	}

	found := 0
	for _, ing := range meal.Ingredients {
		want := normalizeName(ing.Name)
		for _, item := range pantry {
			have := normalizeName(item.Name)
			if strings.Contains(have, want) || strings.Contains(want, have) {
				found++
				break
			}
		}
	}
	ratio := float64(found) / float64(len(meal.Ingredients))
	res.Confidence = math.Round(ratio * 100)
	missing := len(meal.Ingredients) - found
	if missing*2 > len(meal.Ingredients) {
		res.Issues = append(res.Issues, fmt.Sprintf("%d of %d ingredients not in pantry", missing, len(meal.Ingredients)))
		res.Passed = false
		return res
	}
	res.Passed = true
	return res
}

func checkDietaryCompliance(meal *models.Meal, profile *models.UserProfile) StageResult {
	res := StageResult{Confidence: 100, Passed: true, Issues: []string{}}
	if profile == nil || len(profile.DietaryRestrictions) == 0 {
		return res
	}

	for _, restriction := range profile.DietaryRestrictions {
		key := strings.ToLower(strings.TrimSpace(restriction))
		keywords, ok := restrictionKeywords[key]
		if !ok {
			continue
		}
		for _, ing := range meal.Ingredients {
			if nameContainsAny(normalizeName(ing.Name), keywords) {
				res.Confidence -= 40
				res.Issues = append(res.Issues, fmt.Sprintf("%q violates %s restriction", ing.Name, key))
				break
			}
		}
	}
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	res.Passed = res.Confidence >= 70
	return res
}

func checkLogicalConsistency(meal *models.Meal) StageResult {
	res := StageResult{Confidence: 100, Issues: []string{}}
	if meal == nil {
		return StageResult{Confidence: 0, Issues: []string{"no meal supplied"}}
	}

	names := make([]string, 0, len(meal.Ingredients))
	for _, ing := range meal.Ingredients {
		names = append(names, normalizeName(ing.Name))
	}
	for _, pair := range conflictingPairs {
		if anyNameContains(names, pair[0]) && anyNameContains(names, pair[1]) {
			res.Confidence -= 30
			res.Issues = append(res.Issues, fmt.Sprintf("unusual combination: %s with %s", pair[0], pair[1]))
		}
	}
	if len(meal.Instructions) < 2 {
		res.Confidence -= 20
		res.Issues = append(res.Issues, "fewer than two instruction steps")
	}
	if len(meal.Ingredients) < 2 {
		res.Confidence -= 25
		res.Issues = append(res.Issues, "fewer than two ingredients")
	}
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	res.Passed = res.Confidence >= 70
	return res
}

func checkNutritionBalance(meal *models.Meal, profile *models.UserProfile) StageResult {
	res := StageResult{Confidence: 100, Issues: []string{}}
	if meal == nil {
		return StageResult{Confidence: 0, Issues: []string{"no meal supplied"}}
	}
	if meal.Calories <= 0 {
		res.Confidence -= 25
		res.Issues = append(res.Issues, "calories missing or invalid")
	}
	if meal.Protein <= 0 {
		res.Confidence -= 25
		res.Issues = append(res.Issues, "protein missing or invalid")
	}
	if meal.Calories > 2000 {
		res.Confidence -= 15
		res.Issues = append(res.Issues, "very high calories for a single meal")
	}
	if profile != nil {
		if hasGoal(profile.HealthGoals, "weight_loss") && meal.Calories > 600 {
			res.Confidence -= 15
			res.Issues = append(res.Issues, "calories above weight-loss target for one meal")
		}
		if hasGoal(profile.HealthGoals, "muscle_gain") && meal.Protein < 25 {
			res.Confidence -= 15
			res.Issues = append(res.Issues, "protein below muscle-gain target for one meal")
		}
	}
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	res.Passed = res.Confidence >= 70
	return res
}

func anyNameContains(names []string, keyword string) bool {
	for _, n := range names {
		if strings.Contains(n, keyword) {
			return true
		}
	}
	return false
}
