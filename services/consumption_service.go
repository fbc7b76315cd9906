package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"mealplanner/logger"
	"mealplanner/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Alias table for ingredient names that differ between recipes and how
// people label their pantry.
var ingredientAliases = map[string]string{
	"scallion":  "green onion",
	"cilantro":  "coriander",
	"aubergine": "eggplant",
	"courgette": "zucchini",
	"garbanzo":  "chickpea",
	"capsicum":  "bell pepper",
	"corn meal": "cornmeal",
}

// Volume conversions to milliliters.
var mlPerUnit = map[string]float64{
	"cup":  240,
	"tbsp": 15,
	"tsp":  5,
	"ml":   1,
	"l":    1000,
}

// Weight conversions to grams.
var gPerUnit = map[string]float64{
	"g":  1,
	"kg": 1000,
}

// ConsumedIngredient reports one successful decrement.
type ConsumedIngredient struct {
	IngredientName string  `json:"ingredient_name"`
	PantryItemID   uint    `json:"pantry_item_id"`
	PantryItemName string  `json:"pantry_item_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
}

// ConsumptionSummary is the partial-success result of consuming a meal:
// unmatched ingredients are metadata, not failures.
type ConsumptionSummary struct {
	Consumed           []ConsumedIngredient `json:"consumed"`
	MissingIngredients []string             `json:"missing_ingredients"`
}

// DepletionForecast estimates when a pantry item runs out.
type DepletionForecast struct {
	PantryItemID uint    `json:"pantry_item_id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	DailyRate    float64 `json:"daily_rate"`
	DaysLeft     int     `json:"days_left"` // -1 when no consumption observed
	Unbounded    bool    `json:"unbounded"`
	Action       string  `json:"action"` // urgent|soon|ok
}

type ConsumptionService struct{ db *gorm.DB }

func NewConsumptionService(db *gorm.DB) *ConsumptionService { return &ConsumptionService{db: db} }

// FindBestPantryMatch resolves a recipe line to a pantry item. Tiers,
// first hit wins: exact normalized name, substring containment either
// way, alias-table lookup. Anything else is a miss.
func FindBestPantryMatch(ing models.Ingredient, pantry []models.PantryItem) (models.PantryItem, bool) {
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
	if alias, ok := ingredientAliases[want]; ok {
		for _, item := range pantry {
			have := normalizeName(item.Name)
			if have == alias || strings.Contains(have, alias) {
				return item, true
			}
		}
	}
	// reverse alias direction: pantry label is the alias key
	for _, item := range pantry {
		if alias, ok := ingredientAliases[normalizeName(item.Name)]; ok && alias == want {
			return item, true
		}
	}
	return models.PantryItem{}, false
}

// CalculateConsumption decides how much of the pantry item one recipe
// line uses, in the pantry item's unit, clamped to availability.
func CalculateConsumption(ing models.Ingredient, item models.PantryItem) float64 {
	required := ing.Amount
	ingUnit := normalizeName(ing.Unit)
	itemUnit := normalizeName(item.Unit)

	if ingUnit == itemUnit {
		return math.Min(required, item.Quantity)
	}
	if converted, ok := convertAmount(required, ingUnit, itemUnit); ok {
		return math.Min(converted, item.Quantity)
	}
	// No convertible path: use up one unit if there is one.
	if item.Quantity >= 1 {
		return 1
	}
	return 0
}

func convertAmount(amount float64, from, to string) (float64, bool) {
	// piece and unit are interchangeable counts
	if isCount(from) && isCount(to) {
		return amount, true
	}
	if fromML, ok := mlPerUnit[from]; ok {
		if toML, ok := mlPerUnit[to]; ok {
			return amount * fromML / toML, true
		}
	}
	if fromG, ok := gPerUnit[from]; ok {
		if toG, ok := gPerUnit[to]; ok {
			return amount * fromG / toG, true
		}
	}
	return 0, false
}

func isCount(unit string) bool {
	return unit == "piece" || unit == "unit" || unit == "pieces" || unit == "count" || unit == ""
}

// ConsumeIngredients decrements the pantry for every resolvable recipe
// line of an accepted meal. Each decrement is a locked read-modify-write
// floored at zero; unresolved ingredients are skipped and reported, not
// fatal.
func (s *ConsumptionService) ConsumeIngredients(meal *models.Meal, pantry []models.PantryItem, userID uint) (*ConsumptionSummary, error) {
	summary := &ConsumptionSummary{
		Consumed:           []ConsumedIngredient{},
		MissingIngredients: []string{},
	}

	for _, ing := range meal.Ingredients {
		item, ok := FindBestPantryMatch(ing, pantry)
		if !ok {
			logger.L().Infow("no pantry match for ingredient, skipping",
				"user_id", userID, "ingredient", ing.Name)
			summary.MissingIngredients = append(summary.MissingIngredients, ing.Name)
			continue
		}

		amount := CalculateConsumption(ing, item)
		if amount <= 0 {
			summary.MissingIngredients = append(summary.MissingIngredients, ing.Name)
			continue
		}

		if err := s.decrementItem(item.ID, amount, ing.Name, meal.ID, item.Unit, userID); err != nil {
			return summary, fmt.Errorf("failed to consume %q: %w", ing.Name, err)
		}

		summary.Consumed = append(summary.Consumed, ConsumedIngredient{
			IngredientName: ing.Name,
			PantryItemID:   item.ID,
			PantryItemName: item.Name,
			Quantity:       amount,
			Unit:           item.Unit,
		})
	}
	return summary, nil
}

// clampDecrement resolves a requested decrement against the available
// quantity: never take more than is there, never leave a negative
// balance.
func clampDecrement(quantity, amount float64) (consumed, remaining float64) {
	consumed = math.Min(amount, quantity)
	if consumed < 0 {
		consumed = 0
	}
	remaining = quantity - consumed
	if remaining < 0 {
		remaining = 0
	}
	return consumed, remaining
}

// decrementItem performs the locked decrement, stamps usage metadata,
// and appends the audit record in one transaction. The row lock is what
// keeps two concurrently accepted meals from double-spending the same
// item.
func (s *ConsumptionService) decrementItem(itemID uint, amount float64, ingredientName, recipeID, unit string, userID uint) error {
	var depleted bool
	var itemName string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.PantryItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, itemID).Error; err != nil {
			return err
		}

		consumed, remaining := clampDecrement(item.Quantity, amount)
		item.Quantity = remaining
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		now := time.Now()
		usage := models.PantryItemUsage{PantryItemID: item.ID}
		if err := tx.Where("pantry_item_id = ?", item.ID).
			Assign(map[string]interface{}{"last_used_at": now}).
			FirstOrCreate(&usage).Error; err != nil {
			return err
		}
		if err := tx.Model(&usage).Update("use_count", gorm.Expr("use_count + 1")).Error; err != nil {
			return err
		}

		record := models.ConsumptionRecord{
			UserID:           userID,
			PantryItemID:     item.ID,
			RecipeID:         recipeID,
			IngredientName:   ingredientName,
			ConsumedQuantity: consumed,
			Unit:             unit,
			Date:             now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		depleted = remaining == 0
		itemName = item.Name
		return nil
	})
	if err != nil {
		return err
	}

	// Alert only once the decrement has committed; a rolled-back
	// transaction must not announce a depletion that never happened.
	if depleted {
		EmitAlert(userID, "depletion", fmt.Sprintf("%s is used up", itemName))
	}
	return nil
}

// PredictDepletion computes per-item daily consumption over the tracked
// window and the estimated days left, most urgent first.
func PredictDepletion(pantry []models.PantryItem, records []models.ConsumptionRecord) []DepletionForecast {
	if len(pantry) == 0 {
		return []DepletionForecast{}
	}

	var windowDays float64
	consumedByItem := make(map[uint]float64)
	if len(records) > 0 {
		oldest := records[0].Date
		for _, r := range records {
			consumedByItem[r.PantryItemID] += r.ConsumedQuantity
			if r.Date.Before(oldest) {
				oldest = r.Date
			}
		}
		windowDays = time.Since(oldest).Hours() / 24
		if windowDays < 1 {
			windowDays = 1
		}
	}

	forecasts := make([]DepletionForecast, 0, len(pantry))
	for _, item := range pantry {
		f := DepletionForecast{
			PantryItemID: item.ID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
		}
		total := consumedByItem[item.ID]
		if total <= 0 || windowDays <= 0 {
			f.DaysLeft = -1
			f.Unbounded = true
			f.Action = "ok"
		} else {
			f.DailyRate = total / windowDays
			f.DaysLeft = int(math.Floor(item.Quantity / f.DailyRate))
			switch {
			case f.DaysLeft <= 3:
				f.Action = "urgent"
			case f.DaysLeft <= 7:
				f.Action = "soon"
			default:
				f.Action = "ok"
			}
		}
		forecasts = append(forecasts, f)
	}

	sort.SliceStable(forecasts, func(i, j int) bool {
		di, dj := forecasts[i].DaysLeft, forecasts[j].DaysLeft
		if forecasts[i].Unbounded {
			di = math.MaxInt32
		}
		if forecasts[j].Unbounded {
			dj = math.MaxInt32
		}
		return di < dj
	})
	return forecasts
}

// RecentRecords returns the consumption audit trail for the window used
// by depletion prediction.
func (s *ConsumptionService) RecentRecords(userID uint, days int) ([]models.ConsumptionRecord, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	var records []models.ConsumptionRecord
	err := s.db.
		Where("user_id = ? AND date >= ?", userID, time.Now().AddDate(0, 0, -days)).
		Order("date DESC").
		Find(&records).Error
	return records, err
}

// ListPantry returns the user's current pantry snapshot.
func (s *ConsumptionService) ListPantry(userID uint) ([]models.PantryItem, error) {
	var items []models.PantryItem
	err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&items).Error
	return items, err
}

// AddPantryItem records a restock. Restocks are the only way quantity
// goes up.
func (s *ConsumptionService) AddPantryItem(item *models.PantryItem) error {
	return s.db.Create(item).Error
}
