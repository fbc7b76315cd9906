package models

// Ingredient is one recipe line inside a Meal. Immutable value.
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
}

// Generation methods (meal provenance).
const (
	MethodPersonalized = "personalized"
	MethodCultural     = "cultural"
	MethodFallback     = "fallback"
)

// Meal is a candidate or accepted meal. It is an exchange record between
// the generation pipeline and its callers; only its history entry is
// persisted, and only after acceptance.
type Meal struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	MealType     string       `json:"meal_type"` // breakfast|lunch|dinner|snack
	Ingredients  []Ingredient `json:"ingredients"`
	Calories     float64      `json:"calories"`
	Protein      float64      `json:"protein"`
	Carbs        float64      `json:"carbs"`
	Fat          float64      `json:"fat"`
	Fiber        float64      `json:"fiber"`
	PrepTime     int          `json:"prep_time"` // minutes
	CookTime     int          `json:"cook_time"`
	Servings     int          `json:"servings"`
	Difficulty   string       `json:"difficulty"` // easy|medium|hard
	Instructions []string     `json:"instructions,omitempty"`
	Tags         []string     `json:"tags,omitempty"`

	CuisineType   string `json:"cuisine_type,omitempty"`
	CookingMethod string `json:"cooking_method,omitempty"`

	// Provenance fully determines which scoring defaults apply.
	Method       string  `json:"method"` // personalized|cultural|fallback
	QualityScore float64 `json:"quality_score,omitempty"`

	PantryMatchCount   int     `json:"pantry_match_count,omitempty"`
	PantryMatchPercent float64 `json:"pantry_match_percent,omitempty"`
}
