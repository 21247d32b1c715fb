package behavior

import (
	"sort"
	"sync"
	"time"

	"agrikoSearch/domain"
)

// Clock is injected so eviction and decay are testable with fake time.
type Clock func() time.Time

// Event weights: purchases dominate clicks dominate searches.
const (
	weightSearch   = 1.0
	weightClick    = 2.0
	weightPurchase = 3.0
)

type StoreConfig struct {
	MaxProfiles int
	HistoryCap  int
	DecayFactor float64
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxProfiles: 10000,
		HistoryCap:  50,
		DecayFactor: 0.98,
	}
}

// ProductTraits carries the catalog attributes an event contributes to the
// preference counters.
type ProductTraits struct {
	Categories     []string
	HealthBenefits []string
}

type profileEntry struct {
	mu      sync.Mutex
	profile domain.BehaviorProfile
}

// Store is the bounded in-memory keyed store of behavior profiles. The outer
// map is guarded by mu; each profile carries its own mutex so updates to one
// session serialize while different sessions proceed in parallel.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*profileEntry

	cfg   StoreConfig
	clock Clock
}

func NewStore(cfg StoreConfig, clock Clock) *Store {
	if cfg.MaxProfiles <= 0 {
		cfg.MaxProfiles = DefaultStoreConfig().MaxProfiles
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultStoreConfig().HistoryCap
	}
	if cfg.DecayFactor <= 0 || cfg.DecayFactor > 1 {
		cfg.DecayFactor = DefaultStoreConfig().DecayFactor
	}
	if clock == nil {
		clock = time.Now
	}

	return &Store{
		profiles: make(map[string]*profileEntry),
		cfg:      cfg,
		clock:    clock,
	}
}

// RecordSearch appends a query event and credits the traits of its result
// products to the preference counters.
func (s *Store) RecordSearch(sessionID string, ev domain.QueryEvent, traits []ProductTraits) {
	entry := s.entry(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	p := &entry.profile
	p.SearchHistory = append(p.SearchHistory, ev)
	if len(p.SearchHistory) > s.cfg.HistoryCap {
		p.SearchHistory = p.SearchHistory[len(p.SearchHistory)-s.cfg.HistoryCap:]
	}

	for _, t := range traits {
		creditTraits(&p.Preferences, t, weightSearch)
	}
	decayPreferences(&p.Preferences, s.cfg.DecayFactor)

	p.UpdatedAt = s.clock()
}

func (s *Store) RecordClick(sessionID string, ev domain.ClickEvent, traits ProductTraits) {
	entry := s.entry(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	p := &entry.profile
	p.ClickHistory = append(p.ClickHistory, ev)
	if len(p.ClickHistory) > s.cfg.HistoryCap {
		p.ClickHistory = p.ClickHistory[len(p.ClickHistory)-s.cfg.HistoryCap:]
	}

	creditTraits(&p.Preferences, traits, weightClick)
	decayPreferences(&p.Preferences, s.cfg.DecayFactor)

	p.UpdatedAt = s.clock()
}

func (s *Store) RecordPurchase(sessionID string, ev domain.PurchaseEvent, traits ProductTraits) {
	entry := s.entry(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	p := &entry.profile
	p.PurchaseHistory = append(p.PurchaseHistory, ev)
	if len(p.PurchaseHistory) > s.cfg.HistoryCap {
		p.PurchaseHistory = p.PurchaseHistory[len(p.PurchaseHistory)-s.cfg.HistoryCap:]
	}

	creditTraits(&p.Preferences, traits, weightPurchase)
	decayPreferences(&p.Preferences, s.cfg.DecayFactor)

	p.UpdatedAt = s.clock()
}

// GetProfile returns a copy of the session's profile, creating an empty one
// on first access. Never fails.
func (s *Store) GetProfile(sessionID string) domain.BehaviorProfile {
	entry := s.entry(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return copyProfile(&entry.profile)
}

// Lookup returns a copy without creating a profile for unknown sessions.
// Personalization uses this so absent sessions stay absent.
func (s *Store) Lookup(sessionID string) (domain.BehaviorProfile, bool) {
	s.mu.RLock()
	entry, ok := s.profiles[sessionID]
	s.mu.RUnlock()

	if !ok {
		return domain.BehaviorProfile{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return copyProfile(&entry.profile), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// entry fetches or creates the profile entry and enforces the size bound.
func (s *Store) entry(sessionID string) *profileEntry {
	s.mu.RLock()
	entry, ok := s.profiles[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok = s.profiles[sessionID]; ok {
		return entry
	}

	now := s.clock()
	entry = &profileEntry{
		profile: domain.BehaviorProfile{
			SessionID: sessionID,
			Preferences: domain.Preferences{
				Categories:     make(map[string]float64),
				HealthBenefits: make(map[string]float64),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	s.profiles[sessionID] = entry

	if len(s.profiles) > s.cfg.MaxProfiles {
		s.evictLRULocked(len(s.profiles)-s.cfg.MaxProfiles, sessionID)
	}

	return entry
}

// evictLRULocked drops the n least-recently-updated profiles. The keep
// session is never a candidate so a just-created profile survives timestamp
// ties. Caller holds mu.
func (s *Store) evictLRULocked(n int, keep string) {
	type info struct {
		sessionID string
		updatedAt time.Time
	}

	infos := make([]info, 0, len(s.profiles))
	for sid, e := range s.profiles {
		if sid == keep {
			continue
		}
		infos = append(infos, info{sessionID: sid, updatedAt: e.profile.UpdatedAt})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].updatedAt.Equal(infos[j].updatedAt) {
			return infos[i].sessionID < infos[j].sessionID
		}
		return infos[i].updatedAt.Before(infos[j].updatedAt)
	})

	for i := 0; i < n && i < len(infos); i++ {
		delete(s.profiles, infos[i].sessionID)
		ProfileEvictions.WithLabelValues("lru").Inc()
	}
}

// EvictExpired removes profiles idle longer than maxAge. The key set is
// snapshotted first so live traffic on other sessions is never blocked.
func (s *Store) EvictExpired(maxAge time.Duration) int {
	s.mu.RLock()
	keys := make([]string, 0, len(s.profiles))
	for sid := range s.profiles {
		keys = append(keys, sid)
	}
	s.mu.RUnlock()

	cutoff := s.clock().Add(-maxAge)
	evicted := 0

	for _, sid := range keys {
		s.mu.Lock()
		entry, ok := s.profiles[sid]
		if ok && entry.profile.UpdatedAt.Before(cutoff) {
			delete(s.profiles, sid)
			evicted++
			ProfileEvictions.WithLabelValues("expired").Inc()
		}
		s.mu.Unlock()
	}

	return evicted
}

// StartSweeper runs age-based eviction on a ticker until done is closed.
func (s *Store) StartSweeper(done <-chan struct{}, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.EvictExpired(maxAge)
				ProfileCount.Set(float64(s.Len()))
			}
		}
	}()
}

func creditTraits(prefs *domain.Preferences, t ProductTraits, weight float64) {
	for _, c := range t.Categories {
		if c == "" {
			continue
		}
		prefs.Categories[c] += weight
	}
	for _, b := range t.HealthBenefits {
		if b == "" {
			continue
		}
		prefs.HealthBenefits[b] += weight
	}
}

// decayPreferences multiplies every counter so long-idle preferences fade
// relative to recent behavior.
func decayPreferences(prefs *domain.Preferences, factor float64) {
	for k, v := range prefs.Categories {
		prefs.Categories[k] = v * factor
	}
	for k, v := range prefs.HealthBenefits {
		prefs.HealthBenefits[k] = v * factor
	}
}

func copyProfile(p *domain.BehaviorProfile) domain.BehaviorProfile {
	out := *p

	out.SearchHistory = append([]domain.QueryEvent(nil), p.SearchHistory...)
	out.ClickHistory = append([]domain.ClickEvent(nil), p.ClickHistory...)
	out.PurchaseHistory = append([]domain.PurchaseEvent(nil), p.PurchaseHistory...)

	out.Preferences = domain.Preferences{
		Categories:     make(map[string]float64, len(p.Preferences.Categories)),
		HealthBenefits: make(map[string]float64, len(p.Preferences.HealthBenefits)),
	}
	for k, v := range p.Preferences.Categories {
		out.Preferences.Categories[k] = v
	}
	for k, v := range p.Preferences.HealthBenefits {
		out.Preferences.HealthBenefits[k] = v
	}

	return out
}
