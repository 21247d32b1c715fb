package behavior

import (
	"fmt"
	"math"
	"testing"
	"time"

	"agrikoSearch/domain"
)

type stepClock struct {
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestStoreNeverExceedsMaxProfiles(t *testing.T) {
	clock := newStepClock()
	s := NewStore(StoreConfig{MaxProfiles: 3, HistoryCap: 50, DecayFactor: 0.98}, clock.Now)

	for i := 0; i < 20; i++ {
		s.RecordSearch(fmt.Sprintf("session-%d", i), domain.QueryEvent{Query: "q"}, nil)
		if s.Len() > 3 {
			t.Fatalf("store grew to %d profiles, bound is 3", s.Len())
		}
	}
}

func TestStoreEvictsLeastRecentlyUpdated(t *testing.T) {
	clock := newStepClock()
	s := NewStore(StoreConfig{MaxProfiles: 2, HistoryCap: 50, DecayFactor: 0.98}, clock.Now)

	s.RecordSearch("old", domain.QueryEvent{Query: "a"}, nil)
	s.RecordSearch("mid", domain.QueryEvent{Query: "b"}, nil)
	// touch "old" so "mid" becomes the eviction candidate
	s.RecordSearch("old", domain.QueryEvent{Query: "a2"}, nil)

	s.RecordSearch("new", domain.QueryEvent{Query: "c"}, nil)

	if _, ok := s.Lookup("mid"); ok {
		t.Error("least-recently-updated profile survived eviction")
	}
	if _, ok := s.Lookup("old"); !ok {
		t.Error("recently touched profile was evicted")
	}
	if _, ok := s.Lookup("new"); !ok {
		t.Error("newest profile was evicted")
	}
}

func TestStoreEvictionSparesJustCreatedProfile(t *testing.T) {
	// fixed clock: every profile shares one UpdatedAt, so eviction must
	// break the tie without picking the profile it is making room for
	fixed := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(StoreConfig{MaxProfiles: 2, HistoryCap: 50, DecayFactor: 0.98}, func() time.Time { return fixed })

	s.RecordSearch("session-b", domain.QueryEvent{Query: "a"}, nil)
	s.RecordSearch("session-c", domain.QueryEvent{Query: "b"}, nil)
	// lexically smallest: the naive tie-break would evict this one
	s.RecordSearch("session-a", domain.QueryEvent{Query: "c"}, nil)

	if _, ok := s.Lookup("session-a"); !ok {
		t.Fatal("just-created profile was evicted on a timestamp tie")
	}
	p := s.GetProfile("session-a")
	if len(p.SearchHistory) != 1 || p.SearchHistory[0].Query != "c" {
		t.Errorf("just-created profile lost its event: %+v", p.SearchHistory)
	}
	if s.Len() != 2 {
		t.Fatalf("store holds %d profiles, bound is 2", s.Len())
	}
}

func TestStoreHistoryCapped(t *testing.T) {
	clock := newStepClock()
	s := NewStore(StoreConfig{MaxProfiles: 10, HistoryCap: 5, DecayFactor: 0.98}, clock.Now)

	for i := 0; i < 12; i++ {
		s.RecordSearch("s1", domain.QueryEvent{Query: fmt.Sprintf("q%d", i)}, nil)
	}

	p := s.GetProfile("s1")
	if len(p.SearchHistory) != 5 {
		t.Fatalf("history length = %d, want 5", len(p.SearchHistory))
	}
	// newest entries survive
	if p.SearchHistory[4].Query != "q11" {
		t.Errorf("last entry = %q, want q11", p.SearchHistory[4].Query)
	}
	if p.SearchHistory[0].Query != "q7" {
		t.Errorf("first entry = %q, want q7", p.SearchHistory[0].Query)
	}
}

func TestStoreEventWeights(t *testing.T) {
	clock := newStepClock()
	s := NewStore(StoreConfig{MaxProfiles: 10, HistoryCap: 50, DecayFactor: 1.0}, clock.Now)
	traits := ProductTraits{Categories: []string{"teas"}}

	s.RecordSearch("s1", domain.QueryEvent{Query: "tea"}, []ProductTraits{traits})
	s.RecordClick("s2", domain.ClickEvent{ProductID: 1}, traits)
	s.RecordPurchase("s3", domain.PurchaseEvent{ProductID: 1}, traits)

	if w := s.GetProfile("s1").Preferences.Categories["teas"]; w != 1.0 {
		t.Errorf("search weight = %f, want 1", w)
	}
	if w := s.GetProfile("s2").Preferences.Categories["teas"]; w != 2.0 {
		t.Errorf("click weight = %f, want 2", w)
	}
	if w := s.GetProfile("s3").Preferences.Categories["teas"]; w != 3.0 {
		t.Errorf("purchase weight = %f, want 3", w)
	}
}

func TestStoreDecayFadesOldPreferences(t *testing.T) {
	clock := newStepClock()
	s := NewStore(StoreConfig{MaxProfiles: 10, HistoryCap: 50, DecayFactor: 0.9}, clock.Now)

	s.RecordPurchase("s1", domain.PurchaseEvent{ProductID: 1}, ProductTraits{Categories: []string{"rice"}})
	first := s.GetProfile("s1").Preferences.Categories["rice"]
	if math.Abs(first-3.0*0.9) > 1e-9 {
		t.Fatalf("after one event weight = %f, want %f", first, 3.0*0.9)
	}

	// events on other traits keep decaying the old signal
	for i := 0; i < 10; i++ {
		s.RecordSearch("s1", domain.QueryEvent{Query: "honey"}, []ProductTraits{{Categories: []string{"honey"}}})
	}

	faded := s.GetProfile("s1").Preferences.Categories["rice"]
	if faded >= first {
		t.Errorf("old preference did not fade: %f -> %f", first, faded)
	}
	if faded <= 0 {
		t.Errorf("decay must fade, not erase: %f", faded)
	}
}

func TestStoreGetProfileReturnsCopy(t *testing.T) {
	clock := newStepClock()
	s := NewStore(DefaultStoreConfig(), clock.Now)

	s.RecordSearch("s1", domain.QueryEvent{Query: "tea"}, []ProductTraits{{Categories: []string{"teas"}}})

	p := s.GetProfile("s1")
	p.Preferences.Categories["teas"] = 999
	p.SearchHistory[0].Query = "mutated"

	fresh := s.GetProfile("s1")
	if fresh.Preferences.Categories["teas"] == 999 {
		t.Error("mutating a returned profile leaked into the store")
	}
	if fresh.SearchHistory[0].Query == "mutated" {
		t.Error("mutating returned history leaked into the store")
	}
}

func TestStoreLookupDoesNotCreate(t *testing.T) {
	s := NewStore(DefaultStoreConfig(), newStepClock().Now)

	if _, ok := s.Lookup("ghost"); ok {
		t.Fatal("lookup invented a profile")
	}
	if s.Len() != 0 {
		t.Fatalf("lookup created a profile, len = %d", s.Len())
	}
}

func TestStoreEvictExpired(t *testing.T) {
	clock := newStepClock()
	s := NewStore(DefaultStoreConfig(), clock.Now)

	s.RecordSearch("stale", domain.QueryEvent{Query: "a"}, nil)

	// push the clock well past the max age, then record fresh activity
	clock.now = clock.now.Add(48 * time.Hour)
	s.RecordSearch("fresh", domain.QueryEvent{Query: "b"}, nil)

	evicted := s.EvictExpired(24 * time.Hour)
	if evicted != 1 {
		t.Fatalf("evicted %d profiles, want 1", evicted)
	}
	if _, ok := s.Lookup("stale"); ok {
		t.Error("stale profile survived the sweep")
	}
	if _, ok := s.Lookup("fresh"); !ok {
		t.Error("fresh profile was swept")
	}
}
