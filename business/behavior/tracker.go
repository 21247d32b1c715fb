package behavior

import (
	"context"
	"time"

	"agrikoSearch/domain"
	"agrikoSearch/pkg/logger"

	"gorm.io/datatypes"
)

// EventSink persists raw analytics events (append-only log).
type EventSink interface {
	SaveEvent(ctx context.Context, event domain.SearchEvent) error
}

// AggregateStore keeps cheap counters for the analytics summary and popular
// query suggestions.
type AggregateStore interface {
	IncrEvent(ctx context.Context, eventType string) error
	RecordQuery(ctx context.Context, query string) error
	EventTotals(ctx context.Context) (map[string]int64, error)
	TopQueries(ctx context.Context, limit int) ([]domain.QueryCount, error)
}

// CatalogReader resolves product ids to records in one batched call.
type CatalogReader interface {
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type trackJob struct {
	sessionID string
	eventType string
	query     string
	productID uint64
	position  int
	amount    float64
	context   string
	resultIDs []uint64
	at        time.Time
}

type TrackerConfig struct {
	QueueSize    int
	WriteTimeout time.Duration
}

func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		QueueSize:    1024,
		WriteTimeout: 2 * time.Second,
	}
}

// Tracker records search/click/purchase events into the profile store and the
// persistent sinks. Submission never blocks the caller: jobs go through a
// bounded queue drained by a background goroutine, and a full queue drops the
// event instead of stalling the response path.
type Tracker struct {
	store   *Store
	sink    EventSink
	agg     AggregateStore
	catalog CatalogReader

	queue chan trackJob
	cfg   TrackerConfig
	clock Clock
	done  chan struct{}
}

func NewTracker(store *Store, sink EventSink, agg AggregateStore, catalog CatalogReader, cfg TrackerConfig, clock Clock) *Tracker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultTrackerConfig().QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultTrackerConfig().WriteTimeout
	}
	if clock == nil {
		clock = time.Now
	}

	return &Tracker{
		store:   store,
		sink:    sink,
		agg:     agg,
		catalog: catalog,
		queue:   make(chan trackJob, cfg.QueueSize),
		cfg:     cfg,
		clock:   clock,
		done:    make(chan struct{}),
	}
}

// Start launches the drain goroutine. Stop closes the queue path.
func (t *Tracker) Start() {
	go t.drain()
}

func (t *Tracker) Stop() {
	close(t.done)
}

func (t *Tracker) TrackSearch(sessionID, query, searchType string, resultIDs []uint64) {
	t.submit(trackJob{
		sessionID: sessionID,
		eventType: domain.EventTypeSearch,
		query:     query,
		context:   searchType,
		resultIDs: resultIDs,
		at:        t.clock(),
	})
}

func (t *Tracker) TrackClick(sessionID string, productID uint64, query string, position int) {
	t.submit(trackJob{
		sessionID: sessionID,
		eventType: domain.EventTypeClick,
		query:     query,
		productID: productID,
		position:  position,
		at:        t.clock(),
	})
}

func (t *Tracker) TrackPurchase(sessionID string, productID uint64, purchaseContext string, amount float64) {
	t.submit(trackJob{
		sessionID: sessionID,
		eventType: domain.EventTypePurchase,
		productID: productID,
		amount:    amount,
		context:   purchaseContext,
		at:        t.clock(),
	})
}

func (t *Tracker) submit(job trackJob) {
	select {
	case t.queue <- job:
	default:
		TrackingDrops.Inc()
		logger.Warn("tracking queue full, event dropped",
			"session_id", job.sessionID,
			"event_type", job.eventType,
		)
	}
}

func (t *Tracker) drain() {
	for {
		select {
		case <-t.done:
			return
		case job := <-t.queue:
			t.process(job)
		}
	}
}

// process runs one job end to end with its own timeout. Failures are logged
// and counted; they never reach a search caller.
func (t *Tracker) process(job trackJob) {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout)
	defer cancel()

	t.updateProfile(ctx, job)

	if t.sink != nil {
		event := domain.SearchEvent{
			SessionID: job.sessionID,
			EventType: job.eventType,
			Query:     job.query,
			ProductID: job.productID,
			Value:     job.amount,
			Context: datatypes.JSONMap{
				"position":   job.position,
				"context":    job.context,
				"result_ids": job.resultIDs,
			},
			CreatedAt: job.at,
		}
		if err := t.sink.SaveEvent(ctx, event); err != nil {
			TrackingFailures.WithLabelValues("sink").Inc()
			terr := &domain.TrackingError{Op: "save_event", Err: err}
			logger.Error("analytics sink write failed", "error", terr, "session_id", job.sessionID)
		}
	}

	if t.agg != nil {
		if err := t.agg.IncrEvent(ctx, job.eventType); err != nil {
			TrackingFailures.WithLabelValues("aggregate").Inc()
			logger.Error("aggregate counter failed", "error", err, "event_type", job.eventType)
		}
		if job.eventType == domain.EventTypeSearch && job.query != "" {
			if err := t.agg.RecordQuery(ctx, job.query); err != nil {
				TrackingFailures.WithLabelValues("aggregate").Inc()
				logger.Error("query counter failed", "error", err, "query", job.query)
			}
		}
	}

	ProfileCount.Set(float64(t.store.Len()))
}

// updateProfile resolves product traits in one batched catalog call and
// applies the event to the in-memory profile.
func (t *Tracker) updateProfile(ctx context.Context, job trackJob) {
	switch job.eventType {
	case domain.EventTypeSearch:
		traits := t.resolveTraits(ctx, job.resultIDs)
		t.store.RecordSearch(job.sessionID, domain.QueryEvent{
			Query:            job.query,
			SearchType:       job.context,
			ResultProductIDs: job.resultIDs,
			Timestamp:        job.at,
		}, traits)

	case domain.EventTypeClick:
		traits := t.resolveTraits(ctx, []uint64{job.productID})
		var first ProductTraits
		if len(traits) > 0 {
			first = traits[0]
		}
		t.store.RecordClick(job.sessionID, domain.ClickEvent{
			ProductID: job.productID,
			Query:     job.query,
			Position:  job.position,
			Timestamp: job.at,
		}, first)

	case domain.EventTypePurchase:
		traits := t.resolveTraits(ctx, []uint64{job.productID})
		var first ProductTraits
		if len(traits) > 0 {
			first = traits[0]
		}
		t.store.RecordPurchase(job.sessionID, domain.PurchaseEvent{
			ProductID: job.productID,
			Context:   job.context,
			Amount:    job.amount,
			Timestamp: job.at,
		}, first)
	}
}

func (t *Tracker) resolveTraits(ctx context.Context, ids []uint64) []ProductTraits {
	if t.catalog == nil || len(ids) == 0 {
		return nil
	}

	products, err := t.catalog.FindByIDs(ctx, ids)
	if err != nil {
		TrackingFailures.WithLabelValues("catalog").Inc()
		logger.Error("trait resolution failed", "error", err, "ids", len(ids))
		return nil
	}

	traits := make([]ProductTraits, 0, len(products))
	for _, p := range products {
		traits = append(traits, ProductTraits{
			Categories:     []string{p.ProductCategory},
			HealthBenefits: p.HealthBenefits,
		})
	}

	return traits
}

// Summary aggregates store counts with the persistent counters. Aggregate
// store failures degrade to store-local numbers.
func (t *Tracker) Summary(ctx context.Context) domain.AnalyticsSummary {
	summary := domain.AnalyticsSummary{
		ActiveProfiles: t.store.Len(),
		EventTotals:    map[string]int64{},
		GeneratedAt:    t.clock(),
	}

	if t.agg == nil {
		return summary
	}

	if totals, err := t.agg.EventTotals(ctx); err == nil {
		summary.EventTotals = totals
	} else {
		logger.Warn("aggregate totals unavailable", "error", err)
	}

	if top, err := t.agg.TopQueries(ctx, 10); err == nil {
		summary.TopQueries = top
	} else {
		logger.Warn("top queries unavailable", "error", err)
	}

	return summary
}

// SanitizedProfile exposes the non-PII view of a session profile.
func (t *Tracker) SanitizedProfile(sessionID string) domain.SanitizedProfile {
	profile, ok := t.store.Lookup(sessionID)
	if !ok {
		return domain.SanitizedProfile{
			SessionID: sessionID,
			Preferences: domain.Preferences{
				Categories:     map[string]float64{},
				HealthBenefits: map[string]float64{},
			},
		}
	}

	return domain.SanitizedProfile{
		SessionID:     profile.SessionID,
		Preferences:   profile.Preferences,
		SearchCount:   len(profile.SearchHistory),
		ClickCount:    len(profile.ClickHistory),
		PurchaseCount: len(profile.PurchaseHistory),
		CreatedAt:     profile.CreatedAt,
		UpdatedAt:     profile.UpdatedAt,
	}
}

// Cleanup runs an on-demand eviction sweep and reports how many profiles
// were removed.
func (t *Tracker) Cleanup(maxAge time.Duration) int {
	evicted := t.store.EvictExpired(maxAge)
	ProfileCount.Set(float64(t.store.Len()))
	return evicted
}
