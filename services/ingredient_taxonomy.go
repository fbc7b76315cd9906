package services

import "strings"

// Keyword tables used to bucket pantry items and recipe lines. Name
// heuristics in the style of the whole/refined-grain checks in utils:
// membership is substring containment on the normalized name.

var proteinKeywords = []string{
	"chicken", "beef", "pork", "turkey", "lamb", "fish", "salmon", "tuna",
	"shrimp", "egg", "tofu", "tempeh", "beans", "lentil", "chickpea",
}

var vegetableKeywords = []string{
	"broccoli", "spinach", "carrot", "tomato", "onion", "pepper", "zucchini",
	"cauliflower", "kale", "lettuce", "cucumber", "mushroom", "celery",
	"cabbage", "green bean", "pea", "asparagus", "eggplant",
}

var grainKeywords = []string{
	"rice", "pasta", "quinoa", "oat", "bread", "noodle", "couscous",
	"barley", "tortilla", "flour",
}

var spiceKeywords = []string{
	"salt", "pepper", "cumin", "paprika", "oregano", "basil", "thyme",
	"garlic", "ginger", "chili", "cinnamon", "turmeric", "curry",
}

var dairyKeywords = []string{
	"milk", "cheese", "yogurt", "butter", "cream", "mozzarella", "parmesan",
	"feta",
}

var fruitKeywords = []string{
	"apple", "banana", "orange", "berry", "strawberry", "blueberry",
	"lemon", "lime", "mango", "avocado", "grape", "peach",
}

var oilKeywords = []string{
	"oil", "olive oil", "sesame oil", "coconut oil", "vinegar",
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func nameContainsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// sharedKeyword reports whether both names contain one of the keywords.
func sharedKeyword(a, b string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(a, kw) && strings.Contains(b, kw) {
			return true
		}
	}
	return false
}

// bucketFor classifies an ingredient name into one of the diversity
// buckets, or "" when nothing matches.
func bucketFor(name string) string {
	n := normalizeName(name)
	switch {
	case nameContainsAny(n, proteinKeywords):
		return "protein"
	case nameContainsAny(n, vegetableKeywords):
		return "vegetable"
	case nameContainsAny(n, grainKeywords):
		return "grain"
	case nameContainsAny(n, dairyKeywords):
		return "dairy"
	case nameContainsAny(n, fruitKeywords):
		return "fruit"
	case nameContainsAny(n, oilKeywords):
		return "oil"
	case nameContainsAny(n, spiceKeywords):
		return "spice"
	default:
		return ""
	}
}
