package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"mealplanner/logger"
	"mealplanner/models"

	"github.com/google/uuid"
)

const culturalSubAttempts = 3

// MealGenerator is the narrow contract with the external
// text-generation collaborator.
type MealGenerator interface {
	GenerateMeal(ctx context.Context, prompt string) (*MealPayload, error)
}

// AllowFallback is a pointer so that leaving it unset means "allowed";
// callers must say so explicitly to give up the guaranteed meal.
type GenerationOptions struct {
	DiversityThreshold        float64 `json:"diversity_threshold"`
	PersonalizationThreshold  float64 `json:"personalization_threshold"`
	MaxAttempts               int     `json:"max_attempts"`
	AllowFallback             *bool   `json:"allow_fallback,omitempty"`
	PrioritizeDiversity       bool    `json:"prioritize_diversity"`
	PrioritizePersonalization bool    `json:"prioritize_personalization"`
}

func DefaultGenerationOptions() GenerationOptions {
	allow := true
	return GenerationOptions{
		DiversityThreshold:       70,
		PersonalizationThreshold: 60,
		MaxAttempts:              3,
		AllowFallback:            &allow,
	}
}

func (o GenerationOptions) withDefaults() GenerationOptions {
	def := DefaultGenerationOptions()
	if o.DiversityThreshold <= 0 {
		o.DiversityThreshold = def.DiversityThreshold
	}
	if o.PersonalizationThreshold <= 0 {
		o.PersonalizationThreshold = def.PersonalizationThreshold
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = def.MaxAttempts
	}
	if o.AllowFallback == nil {
		o.AllowFallback = def.AllowFallback
	}
	return o
}

type GenerationResult struct {
	Meal                 *models.Meal `json:"meal"`
	DiversityScore       float64      `json:"diversity_score"`
	PersonalizationScore float64      `json:"personalization_score"`
	PantryUtilization    float64      `json:"pantry_utilization"`
	Method               string       `json:"method"`
	Insights             []string     `json:"insights"`
}

type GenerationService struct {
	diversity *DiversityService
	llm       MealGenerator
}

func NewGenerationService(diversity *DiversityService, llm MealGenerator) *GenerationService {
	return &GenerationService{diversity: diversity, llm: llm}
}

// Generate runs the multi-strategy attempt loop for one meal slot.
// Attempts are sequential: each one reads the evolving best-so-far
// candidate, and the cultural strategy calls a rate-limited external
// service that must not run concurrently within a request. Whenever the
// fallback is permitted the caller is guaranteed a meal.
func (s *GenerationService) Generate(
	ctx context.Context,
	mealType string,
	pantry []models.PantryItem,
	rawProfile *models.UserProfile,
	history []models.MealHistoryEntry,
	opts GenerationOptions,
) (*GenerationResult, error) {
	opts = opts.withDefaults()
	mealType = strings.ToLower(mealType)

	profile := AnalyzeProfile(rawProfile)
	idx := BuildUsageIndex(history, time.Duration(defaultHistoryDays)*24*time.Hour)

	var best *GenerationResult
	var bestOverall float64
	var insights []string

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		// Cancellation is only honored between attempts: nothing has
		// been persisted yet, so aborting here has no side effects.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Strategy 1: personalized (diversity combos + profile scoring).
		candidate, err := s.personalizedStrategy(pantry, mealType, profile, idx, attempt)
		if err != nil {
			logger.L().Warnw("personalized strategy failed", "attempt", attempt, "error", err)
			insights = append(insights, fmt.Sprintf("attempt %d: personalized strategy unavailable", attempt))
		} else {
			result := s.scoreCandidate(candidate, pantry, profile, idx, opts)
			if result.overall > bestOverall {
				best, bestOverall = result.GenerationResult, result.overall
			}
			if result.DiversityScore >= opts.DiversityThreshold &&
				result.PersonalizationScore >= opts.PersonalizationThreshold {
				result.Insights = append(insights, "personalized candidate met both thresholds")
				return result.GenerationResult, nil
			}
		}

		// Strategy 2: cultural (external generation behind the quality gate).
		cultural, err := s.culturalStrategy(ctx, mealType, pantry, profile, rawProfile, idx)
		if err != nil {
			logger.L().Warnw("cultural strategy failed", "attempt", attempt, "error", err)
			insights = append(insights, fmt.Sprintf("attempt %d: cultural strategy unavailable", attempt))
			continue
		}
		result := s.scoreCandidate(cultural, pantry, profile, idx, opts)
		if result.overall > bestOverall {
			best, bestOverall = result.GenerationResult, result.overall
		}
		// Relaxed bar for cultural candidates.
		if result.DiversityScore >= 0.8*opts.DiversityThreshold {
			result.Insights = append(insights, "cultural candidate accepted at relaxed diversity bar")
			return result.GenerationResult, nil
		}
	}

	if best != nil {
		best.Insights = append(insights, "returning best candidate after exhausting attempts")
		return best, nil
	}

	if *opts.AllowFallback {
		result := s.fallbackMeal(mealType, pantry, profile)
		result.Insights = append(insights, "all strategies failed; deterministic fallback used")
		return result, nil
	}
	return nil, ErrGenerationExhausted
}

type scoredCandidate struct {
	*GenerationResult
	overall float64
}

// scoreCandidate computes the diversity/personalization/utilization
// scores and the weighted overall used for best-so-far tracking.
func (s *GenerationService) scoreCandidate(meal *models.Meal, pantry []models.PantryItem, profile DetailedProfile, idx *UsageIndex, opts GenerationOptions) scoredCandidate {
	div := scoreMealDiversity(meal, idx)
	pers := scoreMealPersonalization(meal, profile, time.Now())

	match := MatchIngredients(meal.Ingredients, pantry)
	meal.PantryMatchCount = match.MatchCount
	meal.PantryMatchPercent = match.MatchPercentage

	w1, w2 := 0.2, 0.2
	if opts.PrioritizeDiversity {
		w1 = 0.4
	}
	if opts.PrioritizePersonalization {
		w2 = 0.4
	}
	methodBonus := 0.1
	if meal.Method == models.MethodPersonalized {
		methodBonus = 0.2
	}
	overall := div*w1 + pers*w2 + match.MatchPercentage*0.2 + methodBonus

	return scoredCandidate{
		GenerationResult: &GenerationResult{
			Meal:                 meal,
			DiversityScore:       div,
			PersonalizationScore: pers,
			PantryUtilization:    match.MatchPercentage,
			Method:               meal.Method,
		},
		overall: overall,
	}
}

// scoreMealDiversity: how novel the meal is against the recent window.
func scoreMealDiversity(meal *models.Meal, idx *UsageIndex) float64 {
	names := make([]models.PantryItem, 0, len(meal.Ingredients))
	for _, ing := range meal.Ingredients {
		names = append(names, models.PantryItem{Name: ing.Name})
	}
	score := noveltyScore(names, idx) * 0.7

	if idx != nil {
		cuisineUsed := false
		for _, e := range idx.Entries {
			if strings.EqualFold(e.CuisineType, meal.CuisineType) {
				cuisineUsed = true
				break
			}
		}
		if !cuisineUsed && meal.CuisineType != "" {
			score += 15
		}
		if meal.CookingMethod != "" && !containsString(idx.RecentMethods(methodLookback), strings.ToLower(meal.CookingMethod)) {
			score += 15
		}
	} else {
		score += 30
	}
	return math.Min(score, 100)
}

// scoreMealPersonalization: how well the meal fits the derived profile.
func scoreMealPersonalization(meal *models.Meal, profile DetailedProfile, now time.Time) float64 {
	score := 50.0

	switch meal.Difficulty {
	case "easy":
		if profile.ConveniencePreference >= 7 {
			score += 15
		}
	case "hard":
		if profile.Adventurousness >= 7 {
			score += 15
		}
	case "medium":
		score += 10
	}

	for _, pref := range profile.Profile.CuisinePreferences {
		if strings.EqualFold(pref, meal.CuisineType) {
			score += 15
			break
		}
	}

	if profile.HealthConsciousness >= 7 {
		target := profile.MealCalorieTarget(meal.MealType)
		if target > 0 && math.Abs(meal.Calories-target) <= target*0.2 {
			score += 10
		}
	}

	// Weekend dinners and weekday breakfasts get a small situational bump.
	weekday := now.Weekday()
	if (weekday == time.Saturday || weekday == time.Sunday) && meal.MealType == "dinner" {
		score += 5
	}
	if now.Hour() < 11 && meal.MealType == "breakfast" {
		score += 5
	}

	return math.Min(score, 100)
}

// personalizedStrategy builds a meal from the highest-ranked pantry
// combination, rotating through candidates across attempts.
func (s *GenerationService) personalizedStrategy(pantry []models.PantryItem, mealType string, profile DetailedProfile, idx *UsageIndex, attempt int) (*models.Meal, error) {
	combos := s.diversity.GenerateCombinations(pantry, mealType, profile, idx, 3)
	if len(combos) == 0 {
		return nil, fmt.Errorf("no viable pantry combinations for %s", mealType)
	}
	combo := combos[(attempt-1)%len(combos)]

	ingredients := make([]models.Ingredient, 0, len(combo.Items))
	for _, item := range combo.Items {
		ingredients = append(ingredients, models.Ingredient{
			Name:     item.Name,
			Amount:   portionFor(item),
			Unit:     item.Unit,
			Category: item.Category,
		})
	}

	target := profile.MealCalorieTarget(mealType)
	share := target / math.Max(profile.DailyCalorieTarget, 1)
	prep, cook := timesFor(combo.Complexity)

	meal := &models.Meal{
		ID:            uuid.NewString(),
		Name:          comboMealName(combo),
		MealType:      mealType,
		Ingredients:   ingredients,
		Calories:      math.Round(target),
		Protein:       math.Round(profile.MacroTargets.Protein * share),
		Carbs:         math.Round(profile.MacroTargets.Carbs * share),
		Fat:           math.Round(profile.MacroTargets.Fat * share),
		Fiber:         math.Round(profile.MacroTargets.Fiber * share),
		PrepTime:      prep,
		CookTime:      cook,
		Servings:      1,
		Difficulty:    combo.Complexity,
		CuisineType:   combo.CuisineMatch,
		CookingMethod: combo.CookingMethod,
		Instructions:  comboInstructions(combo),
		Tags:          []string{mealType, combo.CuisineMatch},
		Method:        models.MethodPersonalized,
	}
	return meal, nil
}

// culturalStrategy delegates to the external generation service, with
// its own retry loop wrapped by the quality gate. It keeps the
// best-scored candidate across sub-attempts.
func (s *GenerationService) culturalStrategy(ctx context.Context, mealType string, pantry []models.PantryItem, profile DetailedProfile, rawProfile *models.UserProfile, idx *UsageIndex) (*models.Meal, error) {
	prompt := buildCulturalPrompt(mealType, pantry, profile, idx)

	var bestMeal *models.Meal
	var bestConfidence float64
	var lastErr error

	for sub := 1; sub <= culturalSubAttempts; sub++ {
		subCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		payload, err := s.llm.GenerateMeal(subCtx, prompt)
		cancel()
		if err != nil {
			// Timeouts and malformed payloads are strategy failures,
			// not fatal errors.
			lastErr = err
			logger.L().Debugw("cultural sub-attempt failed", "sub_attempt", sub, "error", err)
			continue
		}

		meal := mealFromPayload(payload, mealType, idx)
		report := ValidateMeal(meal, pantry, rawProfile)
		meal.QualityScore = report.AverageConfidence

		if report.OverallPass {
			return meal, nil
		}
		if report.AverageConfidence > bestConfidence {
			bestMeal, bestConfidence = meal, report.AverageConfidence
		}
	}

	if bestMeal != nil {
		return bestMeal, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("cultural strategy failed: %w", lastErr)
	}
	return nil, fmt.Errorf("cultural strategy produced no usable candidate")
}

func buildCulturalPrompt(mealType string, pantry []models.PantryItem, profile DetailedProfile, idx *UsageIndex) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate one %s recipe around %.0f kcal.\n", mealType, profile.MealCalorieTarget(mealType))

	if len(pantry) > 0 {
		names := make([]string, 0, len(pantry))
		for _, item := range pantry {
			if item.Quantity > 0 {
				names = append(names, item.Name)
			}
		}
		fmt.Fprintf(&sb, "Prefer these available ingredients: %s.\n", strings.Join(names, ", "))
	}
	if len(profile.Profile.CuisinePreferences) > 0 {
		fmt.Fprintf(&sb, "Preferred cuisines: %s.\n", strings.Join(profile.Profile.CuisinePreferences, ", "))
	}
	if len(profile.Profile.DietaryRestrictions) > 0 {
		fmt.Fprintf(&sb, "Hard dietary restrictions: %s.\n", strings.Join(profile.Profile.DietaryRestrictions, ", "))
	}
	if idx != nil {
		rec := GetDiversityRecommendations(idx)
		if len(rec.AvoidIngredients) > 0 {
			fmt.Fprintf(&sb, "Avoid over-used ingredients: %s.\n", strings.Join(rec.AvoidIngredients, ", "))
		}
	}
	return sb.String()
}

func mealFromPayload(p *MealPayload, mealType string, idx *UsageIndex) *models.Meal {
	names := make([]string, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		names = append(names, ing.Name)
	}
	recent := []string{}
	if idx != nil {
		recent = idx.RecentMethods(methodLookback)
	}
	return &models.Meal{
		ID:            uuid.NewString(),
		Name:          p.Name,
		MealType:      mealType,
		Ingredients:   p.Ingredients,
		Calories:      p.Calories,
		Protein:       p.Protein,
		Carbs:         p.Carbs,
		Fat:           p.Fat,
		Fiber:         p.Fiber,
		PrepTime:      p.PrepTime,
		CookTime:      p.CookTime,
		Servings:      p.Servings,
		Difficulty:    p.Difficulty,
		Instructions:  p.Instructions,
		Tags:          p.Tags,
		CuisineType:   guessCuisine(names),
		CookingMethod: guessMethod(names, recent),
		Method:        models.MethodCultural,
	}
}

// Fixed per-meal-type pantry staples the fallback prefers, and its
// fixed macro estimates. Fallback scores are constants by contract:
// diversity 50, personalization 40, never computed.
var fallbackPreferences = map[string][]string{
	"breakfast": {"egg", "oat", "bread", "milk", "banana", "yogurt"},
	"lunch":     {"rice", "chicken", "beans", "cheese", "lettuce", "tomato"},
	"dinner":    {"pasta", "chicken", "rice", "broccoli", "potato", "onion"},
	"snack":     {"apple", "yogurt", "banana", "cheese"},
}

var fallbackMacros = map[string][4]float64{ // calories, protein, carbs, fat
	"breakfast": {350, 15, 45, 12},
	"lunch":     {450, 25, 50, 15},
	"dinner":    {500, 30, 45, 18},
	"snack":     {150, 8, 15, 6},
}

func (s *GenerationService) fallbackMeal(mealType string, pantry []models.PantryItem, profile DetailedProfile) *GenerationResult {
	prefs, ok := fallbackPreferences[mealType]
	if !ok {
		prefs = fallbackPreferences["lunch"]
	}

	var ingredients []models.Ingredient
	for _, pref := range prefs {
		if len(ingredients) >= 4 {
			break
		}
		for _, item := range pantry {
			if item.Quantity <= 0 {
				continue
			}
			if strings.Contains(normalizeName(item.Name), pref) {
				ingredients = append(ingredients, models.Ingredient{
					Name:     item.Name,
					Amount:   portionFor(item),
					Unit:     item.Unit,
					Category: item.Category,
				})
				break
			}
		}
	}

	macros, ok := fallbackMacros[mealType]
	if !ok {
		macros = fallbackMacros["lunch"]
	}

	meal := &models.Meal{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("Simple %s", mealType),
		MealType:    mealType,
		Ingredients: ingredients,
		Calories:    macros[0],
		Protein:     macros[1],
		Carbs:       macros[2],
		Fat:         macros[3],
		Fiber:       5,
		PrepTime:    10,
		CookTime:    15,
		Servings:    1,
		Difficulty:  "easy",
		Instructions: []string{
			"Combine the available ingredients.",
			"Cook simply and season to taste.",
		},
		Tags:   []string{mealType, "fallback"},
		Method: models.MethodFallback,
	}

	match := MatchIngredients(meal.Ingredients, pantry)
	return &GenerationResult{
		Meal:                 meal,
		DiversityScore:       50,
		PersonalizationScore: 40,
		PantryUtilization:    match.MatchPercentage,
		Method:               models.MethodFallback,
	}
}

func portionFor(item models.PantryItem) float64 {
	portions := map[string]float64{
		"protein": 150, "vegetable": 100, "grain": 75,
		"dairy": 50, "fruit": 80, "oil": 15, "spice": 5,
	}
	unit := normalizeName(item.Unit)
	if unit == "g" || unit == "ml" {
		if p, ok := portions[bucketFor(item.Name)]; ok {
			return math.Min(p, item.Quantity)
		}
	}
	return math.Min(1, item.Quantity)
}

func timesFor(complexity string) (prep, cook int) {
	switch complexity {
	case "easy":
		return 10, 15
	case "medium":
		return 15, 25
	default:
		return 25, 40
	}
}

func comboMealName(combo PantryCombo) string {
	var protein, other string
	for _, item := range combo.Items {
		switch bucketFor(item.Name) {
		case "protein":
			if protein == "" {
				protein = strings.ToLower(item.Name)
			}
		case "grain", "vegetable":
			if other == "" {
				other = strings.ToLower(item.Name)
			}
		}
	}
	method := capitalize(combo.CookingMethod)
	switch {
	case protein != "" && other != "":
		return fmt.Sprintf("%s %s with %s", method, protein, other)
	case protein != "":
		return fmt.Sprintf("%s %s", method, protein)
	case other != "":
		return fmt.Sprintf("%s %s", method, other)
	default:
		return fmt.Sprintf("%s medley", method)
	}
}

func comboInstructions(combo PantryCombo) []string {
	return []string{
		fmt.Sprintf("Prep the ingredients: %s.", itemNames(combo.Items)),
		fmt.Sprintf("Cook using the %s method until done.", combo.CookingMethod),
		"Season, plate, and serve.",
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func itemNames(items []models.PantryItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, strings.ToLower(item.Name))
	}
	return strings.Join(names, ", ")
}
