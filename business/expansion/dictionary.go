package expansion

import "sort"

// Keyword categories of the domain dictionary.
const (
	CategoryNutrient  = "nutrient"
	CategoryBenefit   = "benefit"
	CategoryCondition = "condition"
	CategoryProperty  = "property"
)

var nutrientKeywords = []string{
	"curcumin", "antioxidants", "vitamin c", "iron", "calcium",
	"fiber", "potassium", "protein", "anthocyanin", "gingerol",
}

var benefitKeywords = []string{
	"anti-inflammatory", "anti inflammatory", "immunity", "immune support",
	"digestion", "energy", "detox", "weight loss", "skin health",
	"heart health", "blood sugar", "joint health",
}

var conditionKeywords = []string{
	"arthritis", "diabetes", "hypertension", "anemia", "insomnia",
	"cold", "flu", "bloating", "fatigue", "inflammation",
}

var propertyKeywords = []string{
	"organic", "natural", "raw", "pure", "herbal",
	"caffeine-free", "gluten-free", "unsweetened",
}

// relations lists the terms a matched keyword pulls into expansion variants.
// Curated from how shoppers phrase follow-up queries; every related term is
// itself a dictionary keyword so expansion stays closed over the dictionary.
var relations = map[string][]string{
	"curcumin":          {"anti-inflammatory", "joint health"},
	"antioxidants":      {"immunity", "skin health"},
	"gingerol":          {"digestion", "anti-inflammatory"},
	"vitamin c":         {"immunity", "cold"},
	"iron":              {"anemia", "energy"},
	"fiber":             {"digestion", "weight loss"},
	"anti-inflammatory": {"curcumin", "arthritis"},
	"anti inflammatory": {"curcumin", "arthritis"},
	"immunity":          {"vitamin c", "organic"},
	"immune support":    {"vitamin c", "antioxidants"},
	"digestion":         {"fiber", "bloating"},
	"energy":            {"iron", "fatigue"},
	"detox":             {"natural", "herbal"},
	"weight loss":       {"fiber", "blood sugar"},
	"skin health":       {"antioxidants", "pure"},
	"heart health":      {"potassium", "antioxidants"},
	"blood sugar":       {"diabetes", "fiber"},
	"joint health":      {"curcumin", "arthritis"},
	"arthritis":         {"anti-inflammatory", "curcumin"},
	"diabetes":          {"blood sugar", "fiber"},
	"hypertension":      {"potassium", "heart health"},
	"anemia":            {"iron", "energy"},
	"insomnia":          {"herbal", "caffeine-free"},
	"cold":              {"vitamin c", "immunity"},
	"flu":               {"immunity", "herbal"},
	"bloating":          {"digestion", "gingerol"},
	"fatigue":           {"energy", "iron"},
	"inflammation":      {"anti-inflammatory", "curcumin"},
	"organic":           {"natural"},
	"natural":           {"organic"},
	"raw":               {"pure"},
	"pure":              {"raw"},
	"herbal":            {"natural"},
	"caffeine-free":     {"herbal"},
	"gluten-free":       {"natural"},
	"unsweetened":       {"pure"},
}

// compiled at init: every keyword with its category, in deterministic order.
var (
	keywordCategory map[string]string
	allKeywords     []string
)

func init() {
	keywordCategory = make(map[string]string)

	add := func(words []string, category string) {
		for _, w := range words {
			keywordCategory[w] = category
		}
	}

	add(nutrientKeywords, CategoryNutrient)
	add(benefitKeywords, CategoryBenefit)
	add(conditionKeywords, CategoryCondition)
	add(propertyKeywords, CategoryProperty)

	allKeywords = make([]string, 0, len(keywordCategory))
	for w := range keywordCategory {
		allKeywords = append(allKeywords, w)
	}
	sort.Strings(allKeywords)
}

// KeywordCategory returns the category of a dictionary keyword, or "" if the
// term is not in the dictionary.
func KeywordCategory(keyword string) string {
	return keywordCategory[keyword]
}

// AllKeywords returns the compiled dictionary terms in deterministic order.
func AllKeywords() []string {
	return append([]string(nil), allKeywords...)
}
