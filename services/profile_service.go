package services

import (
	"errors"
	"strings"

	"mealplanner/models"

	"gorm.io/gorm"
)

// DetailedProfile is the derived view of a user profile: daily calorie
// target, macro targets, and three 1-10 personality scores. Recomputed
// per generation request, never persisted.
type DetailedProfile struct {
	Profile models.UserProfile `json:"profile"`

	DailyCalorieTarget float64      `json:"daily_calorie_target"`
	MacroTargets       MacroTargets `json:"macro_targets"`

	Adventurousness       int `json:"adventurousness"`
	ConveniencePreference int `json:"convenience_preference"`
	HealthConsciousness   int `json:"health_consciousness"`
}

type MacroTargets struct {
	Protein float64 `json:"protein"` // grams/day
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
}

// Heuristic constants. These are tuning knobs, not derived values;
// kept as package tables so they can be adjusted in one place.
var activityFactors = map[string]float64{
	"sedentary":    1.2,
	"light":        1.375,
	"moderate":     1.55,
	"active":       1.725,
	"extra_active": 1.9,
}

var goalCalorieAdjust = map[string]float64{
	"weight_loss": 0.85,
	"muscle_gain": 1.15,
}

// protein/carb/fat calorie shares per health goal; default 25/45/30.
var goalMacroRatios = map[string][3]float64{
	"muscle_gain":  {0.30, 0.40, 0.30},
	"weight_loss":  {0.30, 0.35, 0.35},
	"heart_health": {0.20, 0.50, 0.30},
}

var mealTypeShare = map[string]float64{
	"breakfast": 0.25,
	"lunch":     0.35,
	"dinner":    0.35,
	"snack":     0.05,
}

// AnalyzeProfile derives calorie/macro targets and personality scores
// from a raw profile. A nil profile yields the documented defaults:
// 2000 kcal and all scores at 5.
func AnalyzeProfile(p *models.UserProfile) DetailedProfile {
	if p == nil {
		return DetailedProfile{
			DailyCalorieTarget:    2000,
			MacroTargets:          macroTargets(2000, "", 25),
			Adventurousness:       5,
			ConveniencePreference: 5,
			HealthConsciousness:   5,
		}
	}

	calories := mifflinStJeor(p)
	if f, ok := activityFactors[strings.ToLower(p.ActivityLevel)]; ok {
		calories *= f
	} else {
		calories *= activityFactors["sedentary"]
	}
	goal := primaryGoal(p.HealthGoals)
	if adj, ok := goalCalorieAdjust[goal]; ok {
		calories *= adj
	}

	fiber := 25.0
	if hasGoal(p.HealthGoals, "digestive_health") {
		fiber = 35.0
	}

	return DetailedProfile{
		Profile:               *p,
		DailyCalorieTarget:    calories,
		MacroTargets:          macroTargets(calories, goal, fiber),
		Adventurousness:       adventurousness(p),
		ConveniencePreference: conveniencePreference(p),
		HealthConsciousness:   healthConsciousness(p),
	}
}

// MealCalorieTarget splits the daily target across meal slots:
// breakfast 25%, lunch 35%, dinner 35%, snack 5%.
func (d DetailedProfile) MealCalorieTarget(mealType string) float64 {
	share, ok := mealTypeShare[strings.ToLower(mealType)]
	if !ok {
		share = 0.25
	}
	return d.DailyCalorieTarget * share
}

// mifflinStJeor: male 10w + 6.25h - 5a + 5, female 10w + 6.25h - 5a - 161.
func mifflinStJeor(p *models.UserProfile) float64 {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if strings.EqualFold(p.Gender, "male") {
		return base + 5
	}
	return base - 161
}

func macroTargets(calories float64, goal string, fiber float64) MacroTargets {
	ratios, ok := goalMacroRatios[goal]
	if !ok {
		ratios = [3]float64{0.25, 0.45, 0.30}
	}
	return MacroTargets{
		Protein: calories * ratios[0] / 4,
		Carbs:   calories * ratios[1] / 4,
		Fat:     calories * ratios[2] / 9,
		Fiber:   fiber,
	}
}

func adventurousness(p *models.UserProfile) int {
	score := 5
	switch n := len(p.CuisinePreferences); {
	case n > 5:
		score += 2
	case n > 3:
		score++
	}
	switch strings.ToLower(p.SkillLevel) {
	case "expert":
		score += 2
	case "intermediate":
		score++
	case "beginner":
		score--
	}
	return clampScore(score)
}

func conveniencePreference(p *models.UserProfile) int {
	score := 5
	switch strings.ToLower(p.ActivityLevel) {
	case "active", "extra_active":
		score += 2
	}
	if p.FamilySize > 3 {
		score++
	}
	if strings.EqualFold(p.SkillLevel, "expert") {
		score--
	}
	return clampScore(score)
}

func healthConsciousness(p *models.UserProfile) int {
	score := 5
	switch n := len(p.HealthGoals); {
	case n > 3:
		score += 2
	case n > 1:
		score++
	}
	if len(p.DietaryRestrictions) > 0 {
		score++
	}
	if len(p.Allergens) > 0 {
		score++
	}
	if hasGoal(p.HealthGoals, "heart_health") ||
		hasGoal(p.HealthGoals, "blood_sugar_control") ||
		hasGoal(p.HealthGoals, "digestive_health") {
		score += 2
	}
	return clampScore(score)
}

func clampScore(s int) int {
	if s < 1 {
		return 1
	}
	if s > 10 {
		return 10
	}
	return s
}

func hasGoal(goals []string, goal string) bool {
	for _, g := range goals {
		if strings.EqualFold(strings.TrimSpace(g), goal) {
			return true
		}
	}
	return false
}

// primaryGoal picks the first goal with a calorie/macro rule attached.
func primaryGoal(goals []string) string {
	for _, g := range goals {
		g = strings.ToLower(strings.TrimSpace(g))
		if _, ok := goalCalorieAdjust[g]; ok {
			return g
		}
		if _, ok := goalMacroRatios[g]; ok {
			return g
		}
	}
	return ""
}

// ProfileService reads raw profiles. The analyzer itself is pure.
type ProfileService struct{ db *gorm.DB }

func NewProfileService(db *gorm.DB) *ProfileService { return &ProfileService{db: db} }

// Get returns the stored profile, or nil when the user has none yet
// (the analyzer falls back to defaults in that case).
func (s *ProfileService) Get(userID uint) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileService) Upsert(p *models.UserProfile) error {
	var existing models.UserProfile
	err := s.db.Where("user_id = ?", p.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(p).Error
	}
	if err != nil {
		return err
	}
	p.ID = existing.ID
	return s.db.Save(p).Error
}
