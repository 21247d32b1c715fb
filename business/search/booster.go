package search

import (
	"fmt"
	"strings"
	"time"

	"agrikoSearch/business/behavior"
	"agrikoSearch/business/expansion"
	"agrikoSearch/domain"
	"agrikoSearch/pkg/logger"
)

type seasonRule struct {
	Label      string
	Terms      []string
	Categories []string
	Multiplier float64
}

type regionRule struct {
	Label      string
	Categories []string
	Multiplier float64
}

// seasonTable maps calendar month to the active promotion. Multipliers stay
// in the 1.0-1.4 band.
var seasonTable = map[time.Month]seasonRule{
	time.January:   {Label: "detox", Terms: []string{"detox", "weight loss", "cleanse"}, Categories: []string{"herbal-powders", "teas"}, Multiplier: 1.3},
	time.February:  {Label: "detox", Terms: []string{"detox", "weight loss", "cleanse"}, Categories: []string{"herbal-powders", "teas"}, Multiplier: 1.25},
	time.March:     {Label: "energy", Terms: []string{"energy", "fatigue", "stamina"}, Categories: []string{"rice", "blends"}, Multiplier: 1.2},
	time.April:     {Label: "energy", Terms: []string{"energy", "fatigue", "stamina"}, Categories: []string{"rice", "blends"}, Multiplier: 1.2},
	time.May:       {Label: "skin", Terms: []string{"skin health", "antioxidants"}, Categories: []string{"honey", "herbal-powders"}, Multiplier: 1.15},
	time.June:      {Label: "immunity", Terms: []string{"immunity", "cold", "flu", "immune support"}, Categories: []string{"herbal-powders", "teas", "blends"}, Multiplier: 1.4},
	time.July:      {Label: "immunity", Terms: []string{"immunity", "cold", "flu", "immune support"}, Categories: []string{"herbal-powders", "teas", "blends"}, Multiplier: 1.4},
	time.August:    {Label: "immunity", Terms: []string{"immunity", "cold", "flu", "immune support"}, Categories: []string{"herbal-powders", "teas", "blends"}, Multiplier: 1.4},
	time.September: {Label: "immunity", Terms: []string{"immunity", "cold", "flu"}, Categories: []string{"herbal-powders", "teas"}, Multiplier: 1.3},
	time.October:   {Label: "harvest", Terms: []string{"organic", "raw", "rice"}, Categories: []string{"rice", "honey"}, Multiplier: 1.15},
	time.November:  {Label: "harvest", Terms: []string{"organic", "raw", "rice"}, Categories: []string{"rice", "honey"}, Multiplier: 1.15},
	time.December:  {Label: "gifting", Terms: []string{"gift", "blends", "honey"}, Categories: []string{"blends", "honey"}, Multiplier: 1.2},
}

// regionTable keys on "country|region". Fixed 1.2x for locally preferred
// categories.
var regionTable = map[string]regionRule{
	"PH|Luzon":     {Label: "ph-luzon", Categories: []string{"rice", "herbal-powders"}, Multiplier: 1.2},
	"PH|Visayas":   {Label: "ph-visayas", Categories: []string{"herbal-powders", "blends"}, Multiplier: 1.2},
	"PH|Mindanao":  {Label: "ph-mindanao", Categories: []string{"teas", "honey"}, Multiplier: 1.2},
	"US|West":      {Label: "us-west", Categories: []string{"herbal-powders", "teas"}, Multiplier: 1.2},
	"US|East":      {Label: "us-east", Categories: []string{"blends", "teas"}, Multiplier: 1.2},
	"AU|National":  {Label: "au", Categories: []string{"honey", "teas"}, Multiplier: 1.2},
	"SG|National":  {Label: "sg", Categories: []string{"rice", "blends"}, Multiplier: 1.2},
}

// Booster applies the three contextual multipliers to fused results. It
// never fails: any internal problem leaves scores at their neutral values.
type Booster struct {
	profiles       *behavior.Store
	personalizeCap float64
	clock          behavior.Clock
}

func NewBooster(profiles *behavior.Store, personalizeCap float64, clock behavior.Clock) *Booster {
	if personalizeCap <= 0 {
		personalizeCap = defaultPersonalizeCap
	}
	if clock == nil {
		clock = time.Now
	}
	return &Booster{
		profiles:       profiles,
		personalizeCap: personalizeCap,
		clock:          clock,
	}
}

// BoostOutcome reports which boosts fired, for appliedContext and insights.
type BoostOutcome struct {
	AppliedContext     []string
	PersonalizedBoosts map[uint64]float64
	RegionalBoosts     map[string]float64
	SeasonalBoost      float64
}

// Apply mutates results in place. Products must already be attached; results
// without a product record keep neutral boosts.
func (b *Booster) Apply(results []domain.FusedResult, req Request, matched []expansion.MatchedKeyword) (outcome BoostOutcome) {
	outcome = BoostOutcome{
		PersonalizedBoosts: map[uint64]float64{},
		RegionalBoosts:     map[string]float64{},
		SeasonalBoost:      1.0,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("booster panic, serving unboosted scores", "panic", fmt.Sprint(r))
			for i := range results {
				neutralize(&results[i])
			}
		}
	}()

	season, seasonActive := b.activeSeason(req, matched)
	region, regionActive := b.activeRegion(req)

	var profile *domain.BehaviorProfile
	if req.Personalization && req.SessionID != "" {
		if p, ok := b.profiles.Lookup(req.SessionID); ok {
			profile = &p
		}
	}

	if seasonActive {
		outcome.SeasonalBoost = season.Multiplier
		outcome.AppliedContext = append(outcome.AppliedContext, "seasonal:"+season.Label)
	}
	if regionActive {
		outcome.AppliedContext = append(outcome.AppliedContext,
			fmt.Sprintf("regional:%s-%s", strings.ToLower(req.Country), strings.ToLower(req.Region)))
		for _, c := range region.Categories {
			outcome.RegionalBoosts[c] = region.Multiplier
		}
	}

	personalizedAny := false

	for i := range results {
		r := &results[i]

		seasonal := 1.0
		if seasonActive && r.Product != nil && containsFold(season.Categories, r.Product.ProductCategory) {
			seasonal = season.Multiplier
			r.RecommendationReason = append(r.RecommendationReason, "seasonal:"+season.Label)
		}

		regional := 1.0
		if regionActive && r.Product != nil && containsFold(region.Categories, r.Product.ProductCategory) {
			regional = region.Multiplier
			r.RecommendationReason = append(r.RecommendationReason,
				fmt.Sprintf("regional:%s-%s", strings.ToLower(req.Country), strings.ToLower(req.Region)))
		}

		personal := 1.0
		if profile != nil && r.Product != nil {
			var signal string
			personal, signal = b.personalBoost(profile, r.Product)
			if personal > 1.0 {
				personalizedAny = true
				outcome.PersonalizedBoosts[r.ProductID] = personal
				r.RecommendationReason = append(r.RecommendationReason,
					fmt.Sprintf("personalized:%s-affinity", signal))
			}
		}

		r.SeasonalBoost = clampBoost(seasonal)
		r.RegionalBoost = clampBoost(regional)
		r.PersonalizationBoost = clampBoost(personal)
		r.ContextualBoost = r.SeasonalBoost * r.RegionalBoost * r.PersonalizationBoost
		r.FinalScore = r.HybridScore * r.ContextualBoost
	}

	if personalizedAny {
		outcome.AppliedContext = append(outcome.AppliedContext, "personalized:session-profile")
	}

	return outcome
}

// activeSeason fires only when the query (or its matched keywords) overlaps
// the current month's terms.
func (b *Booster) activeSeason(req Request, matched []expansion.MatchedKeyword) (seasonRule, bool) {
	if !req.Seasonal {
		return seasonRule{}, false
	}

	season, ok := seasonTable[b.clock().Month()]
	if !ok {
		return seasonRule{}, false
	}

	q := strings.ToLower(req.Query)
	for _, term := range season.Terms {
		if strings.Contains(q, term) {
			return season, true
		}
		for _, m := range matched {
			if m.Keyword == term {
				return season, true
			}
		}
	}

	return seasonRule{}, false
}

func (b *Booster) activeRegion(req Request) (regionRule, bool) {
	if !req.Regional || req.Country == "" || req.Region == "" {
		return regionRule{}, false
	}

	rule, ok := regionTable[req.Country+"|"+req.Region]
	return rule, ok
}

// personalBoost sums the profile's preference weight for the product's
// category and health benefits, capped to keep a single dominant signal from
// running away. Returns the boost and the strongest contributing signal.
func (b *Booster) personalBoost(profile *domain.BehaviorProfile, p *domain.Product) (float64, string) {
	sum := 0.0
	bestSignal := ""
	bestWeight := 0.0

	if w := profile.Preferences.Categories[p.ProductCategory]; w > 0 {
		sum += w
		bestSignal = p.ProductCategory
		bestWeight = w
	}

	for _, benefit := range p.HealthBenefits {
		if w := profile.Preferences.HealthBenefits[benefit]; w > 0 {
			sum += w
			if w > bestWeight {
				bestSignal = benefit
				bestWeight = w
			}
		}
	}

	if sum <= 0 {
		return 1.0, ""
	}

	if sum > b.personalizeCap {
		sum = b.personalizeCap
	}

	return 1.0 + sum, slugify(bestSignal)
}

func neutralize(r *domain.FusedResult) {
	r.SeasonalBoost = 1.0
	r.RegionalBoost = 1.0
	r.PersonalizationBoost = 1.0
	r.ContextualBoost = 1.0
	r.FinalScore = r.HybridScore
	r.RecommendationReason = nil
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
