package search

import (
	"math"
	"testing"
	"time"

	"agrikoSearch/business/behavior"
	"agrikoSearch/domain"

	"gorm.io/datatypes"
)

func fixedClock(t time.Time) behavior.Clock {
	return func() time.Time { return t }
}

func june() time.Time {
	return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func fusedResult(id uint64, hybrid float64, category string, benefits ...string) domain.FusedResult {
	return domain.FusedResult{
		ProductID:   id,
		HybridScore: hybrid,
		FinalScore:  hybrid,
		Source:      domain.SourceHybrid,
		Product: &domain.Product{
			ID:              id,
			ProductCategory: category,
			HealthBenefits:  datatypes.JSONSlice[string](benefits),
		},
		SeasonalBoost:        1.0,
		PersonalizationBoost: 1.0,
		RegionalBoost:        1.0,
		ContextualBoost:      1.0,
	}
}

func contextualRequest(query, sessionID string) Request {
	return Request{
		Query:           query,
		SessionID:       sessionID,
		Seasonal:        true,
		Regional:        true,
		Personalization: true,
	}
}

func TestApplyNeutralWithoutContext(t *testing.T) {
	store := behavior.NewStore(behavior.DefaultStoreConfig(), fixedClock(june()))
	b := NewBooster(store, 0.5, fixedClock(june()))

	results := []domain.FusedResult{fusedResult(1, 0.8, "rice")}
	outcome := b.Apply(results, contextualRequest("brown rice", "unknown-session"), nil)

	r := results[0]
	if r.ContextualBoost != 1.0 || r.FinalScore != r.HybridScore {
		t.Errorf("expected neutral boosts, got %+v", r)
	}
	if len(outcome.AppliedContext) != 0 {
		t.Errorf("no context should have applied, got %v", outcome.AppliedContext)
	}
}

func TestApplySeasonalBoost(t *testing.T) {
	b := NewBooster(behavior.NewStore(behavior.DefaultStoreConfig(), nil), 0.5, fixedClock(june()))

	results := []domain.FusedResult{
		fusedResult(1, 0.8, "teas"),
		fusedResult(2, 0.8, "rice"),
	}
	outcome := b.Apply(results, contextualRequest("immunity booster", ""), nil)

	if results[0].SeasonalBoost != 1.4 {
		t.Errorf("teas seasonal boost = %f, want 1.4", results[0].SeasonalBoost)
	}
	if results[1].SeasonalBoost != 1.0 {
		t.Errorf("rice is not a june category, boost = %f", results[1].SeasonalBoost)
	}
	if want := 0.8 * 1.4; math.Abs(results[0].FinalScore-want) > 1e-9 {
		t.Errorf("final score = %f, want %f", results[0].FinalScore, want)
	}
	if !containsString(outcome.AppliedContext, "seasonal:immunity") {
		t.Errorf("applied context missing seasonal label: %v", outcome.AppliedContext)
	}
	if !containsString(results[0].RecommendationReason, "seasonal:immunity") {
		t.Errorf("boosted result missing reason: %v", results[0].RecommendationReason)
	}
}

func TestApplySeasonalRequiresQueryOverlap(t *testing.T) {
	b := NewBooster(behavior.NewStore(behavior.DefaultStoreConfig(), nil), 0.5, fixedClock(june()))

	results := []domain.FusedResult{fusedResult(1, 0.8, "teas")}
	b.Apply(results, contextualRequest("black rice", ""), nil)

	if results[0].SeasonalBoost != 1.0 {
		t.Errorf("seasonal fired without query overlap: %f", results[0].SeasonalBoost)
	}
}

func TestApplySeasonalDisabled(t *testing.T) {
	b := NewBooster(behavior.NewStore(behavior.DefaultStoreConfig(), nil), 0.5, fixedClock(june()))

	req := contextualRequest("immunity booster", "")
	req.Seasonal = false

	results := []domain.FusedResult{fusedResult(1, 0.8, "teas")}
	outcome := b.Apply(results, req, nil)

	if results[0].SeasonalBoost != 1.0 || outcome.SeasonalBoost != 1.0 {
		t.Error("seasonal boost applied while disabled")
	}
}

func TestApplyRegionalBoost(t *testing.T) {
	b := NewBooster(behavior.NewStore(behavior.DefaultStoreConfig(), nil), 0.5, fixedClock(june()))

	req := contextualRequest("black rice", "")
	req.Country = "PH"
	req.Region = "Luzon"

	results := []domain.FusedResult{
		fusedResult(1, 0.8, "rice"),
		fusedResult(2, 0.8, "honey"),
	}
	outcome := b.Apply(results, req, nil)

	if results[0].RegionalBoost != 1.2 {
		t.Errorf("rice regional boost = %f, want 1.2", results[0].RegionalBoost)
	}
	if results[1].RegionalBoost != 1.0 {
		t.Errorf("honey is not a luzon category, boost = %f", results[1].RegionalBoost)
	}
	if !containsString(outcome.AppliedContext, "regional:ph-luzon") {
		t.Errorf("applied context missing regional label: %v", outcome.AppliedContext)
	}
}

func TestApplyUnknownRegionNeutral(t *testing.T) {
	b := NewBooster(behavior.NewStore(behavior.DefaultStoreConfig(), nil), 0.5, fixedClock(june()))

	req := contextualRequest("black rice", "")
	req.Country = "FR"
	req.Region = "Paris"

	results := []domain.FusedResult{fusedResult(1, 0.8, "rice")}
	b.Apply(results, req, nil)

	if results[0].RegionalBoost != 1.0 {
		t.Errorf("unknown region must stay neutral, got %f", results[0].RegionalBoost)
	}
}

func TestApplyPersonalizationFromProfile(t *testing.T) {
	store := behavior.NewStore(behavior.DefaultStoreConfig(), fixedClock(june()))
	traits := behavior.ProductTraits{Categories: []string{"herbal-powders"}, HealthBenefits: []string{"immunity"}}
	store.RecordPurchase("s1", domain.PurchaseEvent{ProductID: 1, Timestamp: june()}, traits)

	b := NewBooster(store, 0.5, fixedClock(june()))

	results := []domain.FusedResult{
		fusedResult(1, 0.5, "herbal-powders", "immunity"),
		fusedResult(2, 0.5, "rice"),
	}
	outcome := b.Apply(results, contextualRequest("moringa", "s1"), nil)

	if results[0].PersonalizationBoost <= 1.0 {
		t.Fatalf("preferred product got boost %f, want > 1.0", results[0].PersonalizationBoost)
	}
	if results[1].PersonalizationBoost != 1.0 {
		t.Errorf("unrelated product got boost %f", results[1].PersonalizationBoost)
	}
	if _, ok := outcome.PersonalizedBoosts[1]; !ok {
		t.Error("outcome missing personalized boost for product 1")
	}
	if !containsString(outcome.AppliedContext, "personalized:session-profile") {
		t.Errorf("applied context missing personalization label: %v", outcome.AppliedContext)
	}
}

func TestApplyPersonalizationCapped(t *testing.T) {
	store := behavior.NewStore(behavior.DefaultStoreConfig(), fixedClock(june()))
	traits := behavior.ProductTraits{Categories: []string{"herbal-powders"}, HealthBenefits: []string{"immunity"}}
	for i := 0; i < 50; i++ {
		store.RecordPurchase("s1", domain.PurchaseEvent{ProductID: 1, Timestamp: june()}, traits)
	}

	personalizeCap := 0.5
	b := NewBooster(store, personalizeCap, fixedClock(june()))

	results := []domain.FusedResult{fusedResult(1, 0.5, "herbal-powders", "immunity")}
	b.Apply(results, contextualRequest("moringa", "s1"), nil)

	if got := results[0].PersonalizationBoost; math.Abs(got-(1+personalizeCap)) > 1e-9 {
		t.Errorf("heavy profile boost = %f, want capped at %f", got, 1+personalizeCap)
	}
}

func TestApplyPersonalizationMonotone(t *testing.T) {
	clock := fixedClock(june())
	traits := behavior.ProductTraits{Categories: []string{"teas"}}

	boostAfter := func(purchases int) float64 {
		store := behavior.NewStore(behavior.DefaultStoreConfig(), clock)
		for i := 0; i < purchases; i++ {
			store.RecordPurchase("s", domain.PurchaseEvent{ProductID: 2, Timestamp: june()}, traits)
		}
		b := NewBooster(store, 0.5, clock)
		results := []domain.FusedResult{fusedResult(2, 0.5, "teas")}
		b.Apply(results, contextualRequest("green tea", "s"), nil)
		return results[0].PersonalizationBoost
	}

	prev := boostAfter(0)
	for _, n := range []int{1, 2, 5, 20} {
		cur := boostAfter(n)
		if cur < prev {
			t.Fatalf("boost decreased with more purchases: %f after %d, previous %f", cur, n, prev)
		}
		prev = cur
	}
}

func TestApplyBoostsStayClamped(t *testing.T) {
	store := behavior.NewStore(behavior.DefaultStoreConfig(), fixedClock(june()))
	traits := behavior.ProductTraits{Categories: []string{"teas"}, HealthBenefits: []string{"immunity", "digestion"}}
	for i := 0; i < 100; i++ {
		store.RecordPurchase("s1", domain.PurchaseEvent{ProductID: 1, Timestamp: june()}, traits)
	}

	// an oversized cap still cannot push one boost past the ceiling
	b := NewBooster(store, 5.0, fixedClock(june()))

	req := contextualRequest("immunity tea", "s1")
	req.Country = "PH"
	req.Region = "Mindanao"

	results := []domain.FusedResult{fusedResult(1, 0.9, "teas", "immunity", "digestion")}
	b.Apply(results, req, nil)

	r := results[0]
	for name, boost := range map[string]float64{
		"seasonal":        r.SeasonalBoost,
		"regional":        r.RegionalBoost,
		"personalization": r.PersonalizationBoost,
	} {
		if boost < 0.5 || boost > 2.0 {
			t.Errorf("%s boost %f outside [0.5, 2.0]", name, boost)
		}
	}
	if want := r.SeasonalBoost * r.RegionalBoost * r.PersonalizationBoost; math.Abs(r.ContextualBoost-want) > 1e-9 {
		t.Errorf("contextual boost %f != product of components %f", r.ContextualBoost, want)
	}
	if want := r.HybridScore * r.ContextualBoost; math.Abs(r.FinalScore-want) > 1e-9 {
		t.Errorf("final score %f != hybrid * contextual %f", r.FinalScore, want)
	}
}

func TestApplyResultWithoutProductStaysNeutral(t *testing.T) {
	b := NewBooster(behavior.NewStore(behavior.DefaultStoreConfig(), nil), 0.5, fixedClock(june()))

	results := []domain.FusedResult{{
		ProductID: 9, HybridScore: 0.7, FinalScore: 0.7,
		SeasonalBoost: 1, RegionalBoost: 1, PersonalizationBoost: 1, ContextualBoost: 1,
	}}
	b.Apply(results, contextualRequest("immunity booster", ""), nil)

	if results[0].ContextualBoost != 1.0 {
		t.Errorf("unenriched result got boost %f", results[0].ContextualBoost)
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
