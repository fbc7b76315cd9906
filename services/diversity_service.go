package services

import (
	"sort"
	"strings"
	"time"

	"mealplanner/logger"
	"mealplanner/models"

	"gorm.io/gorm"
)

const (
	defaultHistoryDays  = 7
	minComboVariety     = 3
	maxComboIngredients = 8
	noveltyLookback     = 5 // history entries checked for novelty
	methodLookback      = 3 // recent cooking methods to avoid
)

var cuisineCatalog = []string{
	"italian", "mexican", "asian", "indian", "mediterranean", "american",
	"thai", "french",
}

var cookingMethodCatalog = []string{
	"stir-fried", "baked", "grilled", "roasted", "steamed", "sauteed",
	"braised", "raw",
}

// IngredientUsage is the derived per-ingredient view of recent history.
type IngredientUsage struct {
	Name         string    `json:"name"`
	LastUsed     time.Time `json:"last_used"`
	UseCount     int       `json:"use_count"`
	MealTypes    []string  `json:"meal_types"`
	CuisineTypes []string  `json:"cuisine_types"`
}

// UsageIndex is rebuilt from the history window on every activation and
// passed explicitly through the call chain. It is never persisted and
// never shared across requests.
type UsageIndex struct {
	Usage   map[string]*IngredientUsage
	Entries []models.MealHistoryEntry // newest first
	Window  time.Duration
}

// PantryCombo is one candidate ingredient subset for a meal slot.
type PantryCombo struct {
	Items            []models.PantryItem `json:"items"`
	NutritionBalance float64             `json:"nutrition_balance"`
	NoveltyScore     float64             `json:"novelty_score"`
	Complexity       string              `json:"complexity"` // easy|medium|hard
	CuisineMatch     string              `json:"cuisine_match"`
	CookingMethod    string              `json:"cooking_method"`
	Score            float64             `json:"score"`
}

type DiversityRecommendations struct {
	AvoidIngredients []string `json:"avoid_ingredients"`
	UnusedCuisines   []string `json:"unused_cuisines"`
	UnusedMethods    []string `json:"unused_methods"`
	VarietyTips      []string `json:"variety_tips"`
}

type DiversityService struct{ db *gorm.DB }

func NewDiversityService(db *gorm.DB) *DiversityService { return &DiversityService{db: db} }

// LoadHistory reads the rolling history window and builds the usage index.
func (s *DiversityService) LoadHistory(userID uint, days int) (*UsageIndex, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	since := time.Now().AddDate(0, 0, -days)

	var entries []models.MealHistoryEntry
	if err := s.db.
		Where("user_id = ? AND ate_at >= ?", userID, since).
		Order("ate_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return BuildUsageIndex(entries, time.Duration(days)*24*time.Hour), nil
}

// BuildUsageIndex folds history entries (newest first) into per-ingredient
// usage stats.
func BuildUsageIndex(entries []models.MealHistoryEntry, window time.Duration) *UsageIndex {
	idx := &UsageIndex{
		Usage:   make(map[string]*IngredientUsage),
		Entries: entries,
		Window:  window,
	}
	for _, e := range entries {
		for _, name := range e.Ingredients {
			key := normalizeName(name)
			u, ok := idx.Usage[key]
			if !ok {
				u = &IngredientUsage{Name: key}
				idx.Usage[key] = u
			}
			u.UseCount++
			if e.AteAt.After(u.LastUsed) {
				u.LastUsed = e.AteAt
			}
			u.MealTypes = appendUnique(u.MealTypes, strings.ToLower(e.MealType))
			if e.CuisineType != "" {
				u.CuisineTypes = appendUnique(u.CuisineTypes, strings.ToLower(e.CuisineType))
			}
		}
	}
	return idx
}

// RecentMethods returns up to n distinct cooking methods, newest first.
func (idx *UsageIndex) RecentMethods(n int) []string {
	var out []string
	for _, e := range idx.Entries {
		m := strings.ToLower(e.CookingMethod)
		if m == "" {
			continue
		}
		out = appendUnique(out, m)
		if len(out) >= n {
			break
		}
	}
	return out
}

// usedRecentlyFor reports whether the ingredient should rotate out of
// the given meal slot: used within the window for that slot and at
// least twice overall.
func (idx *UsageIndex) usedRecentlyFor(name, mealType string) bool {
	u, ok := idx.Usage[normalizeName(name)]
	if !ok {
		return false
	}
	if u.UseCount < 2 {
		return false
	}
	if time.Since(u.LastUsed) > idx.Window {
		return false
	}
	for _, mt := range u.MealTypes {
		if mt == strings.ToLower(mealType) {
			return true
		}
	}
	return false
}

// FilteredPantryItems drops pantry items that the rotation rule excludes
// for this meal slot.
func FilteredPantryItems(pantry []models.PantryItem, mealType string, idx *UsageIndex) []models.PantryItem {
	out := make([]models.PantryItem, 0, len(pantry))
	for _, item := range pantry {
		if item.Quantity <= 0 {
			continue
		}
		if idx != nil && idx.usedRecentlyFor(item.Name, mealType) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// GenerateCombinations assembles up to targetCount novelty-scored
// ingredient combinations from the filtered pantry.
func (s *DiversityService) GenerateCombinations(pantry []models.PantryItem, mealType string, profile DetailedProfile, idx *UsageIndex, targetCount int) []PantryCombo {
	if targetCount <= 0 {
		targetCount = 3
	}

	filtered := FilteredPantryItems(pantry, mealType, idx)
	buckets := partitionBuckets(filtered, idx)

	recentMethods := []string{}
	if idx != nil {
		recentMethods = idx.RecentMethods(methodLookback)
	}

	var combos []PantryCombo
	// Vary the combo footprint per round so candidates differ in size
	// and rotate through each bucket's least-used items.
	for round := 0; round < targetCount*2; round++ {
		combo := assembleCombo(buckets, round, profile)
		if len(combo) < minComboVariety {
			continue
		}
		combos = append(combos, scoreCombo(combo, idx, recentMethods))
	}

	sort.SliceStable(combos, func(i, j int) bool { return combos[i].Score > combos[j].Score })
	combos = dedupeCombos(combos)
	if len(combos) > targetCount {
		combos = combos[:targetCount]
	}
	return combos
}

// partitionBuckets groups items by keyword bucket, least-used first.
func partitionBuckets(items []models.PantryItem, idx *UsageIndex) map[string][]models.PantryItem {
	buckets := make(map[string][]models.PantryItem)
	for _, item := range items {
		b := bucketFor(item.Name)
		if b == "" {
			continue
		}
		buckets[b] = append(buckets[b], item)
	}
	for b := range buckets {
		sort.SliceStable(buckets[b], func(i, j int) bool {
			ui := usageOf(idx, buckets[b][i].Name)
			uj := usageOf(idx, buckets[b][j].Name)
			if ui.UseCount != uj.UseCount {
				return ui.UseCount < uj.UseCount
			}
			return ui.LastUsed.Before(uj.LastUsed)
		})
	}
	return buckets
}

func usageOf(idx *UsageIndex, name string) IngredientUsage {
	if idx == nil {
		return IngredientUsage{}
	}
	if u, ok := idx.Usage[normalizeName(name)]; ok {
		return *u
	}
	return IngredientUsage{}
}

// assembleCombo builds one candidate set: one protein, one or two
// vegetables, a grain, then extras depending on the round and how
// adventurous the profile is.
func assembleCombo(buckets map[string][]models.PantryItem, round int, profile DetailedProfile) []models.PantryItem {
	var combo []models.PantryItem
	take := func(bucket string, offset int) {
		items := buckets[bucket]
		if len(items) == 0 {
			return
		}
		combo = append(combo, items[offset%len(items)])
	}

	take("protein", round)
	take("vegetable", round)
	if round%2 == 1 {
		take("vegetable", round+1)
	}
	take("grain", round)

	extras := []string{"spice", "oil", "dairy", "fruit"}
	extraCount := 1 + round%2
	if profile.Adventurousness >= 7 {
		extraCount++
	}
	for i := 0; i < extraCount && i < len(extras); i++ {
		take(extras[(round+i)%len(extras)], round)
	}

	if len(combo) > maxComboIngredients {
		combo = combo[:maxComboIngredients]
	}
	return dedupeItems(combo)
}

func scoreCombo(items []models.PantryItem, idx *UsageIndex, recentMethods []string) PantryCombo {
	combo := PantryCombo{Items: items}

	var hasProtein, hasVegetable, hasGrain bool
	for _, item := range items {
		switch bucketFor(item.Name) {
		case "protein":
			hasProtein = true
		case "vegetable":
			hasVegetable = true
		case "grain":
			hasGrain = true
		}
	}
	if hasProtein {
		combo.NutritionBalance += 40
	}
	if hasVegetable {
		combo.NutritionBalance += 35
	}
	if hasGrain {
		combo.NutritionBalance += 25
	}
	if combo.NutritionBalance > 100 {
		combo.NutritionBalance = 100
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	combo.NoveltyScore = noveltyScore(items, idx)
	combo.Complexity = complexityOf(len(items))
	combo.CuisineMatch = guessCuisine(names)
	combo.CookingMethod = guessMethod(names, recentMethods)

	bonus := map[string]float64{"easy": 15, "medium": 20, "hard": 10}[combo.Complexity]
	combo.Score = combo.NutritionBalance*0.4 +
		combo.NoveltyScore*0.3 +
		float64(len(items))*5*0.2 +
		bonus*0.1
	return combo
}

// noveltyScore: percentage of combo ingredients absent from the most
// recent history entries.
func noveltyScore(items []models.PantryItem, idx *UsageIndex) float64 {
	if len(items) == 0 {
		return 0
	}
	recent := make(map[string]bool)
	if idx != nil {
		for i, e := range idx.Entries {
			if i >= noveltyLookback {
				break
			}
			for _, name := range e.Ingredients {
				recent[normalizeName(name)] = true
			}
		}
	}
	novel := 0
	for _, item := range items {
		if !recent[normalizeName(item.Name)] {
			novel++
		}
	}
	return float64(novel) / float64(len(items)) * 100
}

func complexityOf(n int) string {
	switch {
	case n <= 4:
		return "easy"
	case n <= 7:
		return "medium"
	default:
		return "hard"
	}
}

var cuisineHints = map[string][]string{
	"asian":         {"soy", "ginger", "sesame", "rice", "noodle", "tofu"},
	"italian":       {"pasta", "parmesan", "basil", "mozzarella", "tomato"},
	"mexican":       {"tortilla", "beans", "cumin", "chili", "avocado"},
	"indian":        {"curry", "turmeric", "lentil", "chickpea", "ginger"},
	"mediterranean": {"olive oil", "feta", "cucumber", "lemon", "oregano"},
}

func guessCuisine(names []string) string {
	best, bestHits := "american", 0
	for _, cuisine := range []string{"asian", "italian", "mexican", "indian", "mediterranean"} {
		hits := 0
		for _, name := range names {
			if nameContainsAny(normalizeName(name), cuisineHints[cuisine]) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = cuisine, hits
		}
	}
	return best
}

// guessMethod proposes a cooking method that fits the ingredients while
// avoiding the most recently used ones.
func guessMethod(names []string, recent []string) string {
	preferred := []string{}
	for _, name := range names {
		n := normalizeName(name)
		switch {
		case nameContainsAny(n, []string{"fish", "salmon", "tuna"}):
			preferred = append(preferred, "grilled", "baked")
		case nameContainsAny(n, []string{"rice", "noodle", "tofu"}):
			preferred = append(preferred, "stir-fried")
		case nameContainsAny(n, []string{"lettuce", "cucumber", "avocado"}):
			preferred = append(preferred, "raw")
		}
	}
	preferred = append(preferred, cookingMethodCatalog...)

	for _, m := range preferred {
		if !containsString(recent, m) {
			return m
		}
	}
	return cookingMethodCatalog[0]
}

// SaveMealToHistory appends the accepted meal to the history store.
func (s *DiversityService) SaveMealToHistory(userID uint, meal *models.Meal) error {
	names := make([]string, 0, len(meal.Ingredients))
	for _, ing := range meal.Ingredients {
		names = append(names, ing.Name)
	}
	entry := models.MealHistoryEntry{
		UserID:        userID,
		MealName:      meal.Name,
		Ingredients:   names,
		MealType:      strings.ToLower(meal.MealType),
		CuisineType:   strings.ToLower(meal.CuisineType),
		CookingMethod: strings.ToLower(meal.CookingMethod),
		AteAt:         time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return err
	}
	logger.L().Infow("meal saved to history", "user_id", userID, "meal", meal.Name, "meal_type", entry.MealType)
	return nil
}

// GetDiversityRecommendations summarizes what to avoid and what is
// still unexplored in the current window.
func GetDiversityRecommendations(idx *UsageIndex) DiversityRecommendations {
	rec := DiversityRecommendations{
		AvoidIngredients: []string{},
		VarietyTips: []string{
			"Rotate your protein sources across the week.",
			"Try one cuisine you haven't cooked recently.",
			"Swap a repeated grain for a different one.",
		},
	}

	usedCuisines := make(map[string]bool)
	usedMethods := make(map[string]bool)
	if idx != nil {
		for name, u := range idx.Usage {
			if u.UseCount > 2 {
				rec.AvoidIngredients = append(rec.AvoidIngredients, name)
			}
		}
		sort.Strings(rec.AvoidIngredients)
		for _, e := range idx.Entries {
			if e.CuisineType != "" {
				usedCuisines[strings.ToLower(e.CuisineType)] = true
			}
			if e.CookingMethod != "" {
				usedMethods[strings.ToLower(e.CookingMethod)] = true
			}
		}
	}
	for _, c := range cuisineCatalog {
		if !usedCuisines[c] {
			rec.UnusedCuisines = append(rec.UnusedCuisines, c)
		}
	}
	for _, m := range cookingMethodCatalog {
		if !usedMethods[m] {
			rec.UnusedMethods = append(rec.UnusedMethods, m)
		}
	}
	return rec
}

func appendUnique(list []string, v string) []string {
	if v == "" || containsString(list, v) {
		return list
	}
	return append(list, v)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func dedupeItems(items []models.PantryItem) []models.PantryItem {
	seen := make(map[string]bool)
	out := make([]models.PantryItem, 0, len(items))
	for _, item := range items {
		key := normalizeName(item.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func dedupeCombos(combos []PantryCombo) []PantryCombo {
	seen := make(map[string]bool)
	out := make([]PantryCombo, 0, len(combos))
	for _, c := range combos {
		names := make([]string, 0, len(c.Items))
		for _, item := range c.Items {
			names = append(names, normalizeName(item.Name))
		}
		sort.Strings(names)
		key := strings.Join(names, "|")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
