package domain

import "time"

// QueryEvent is one recorded search in a session history (newest-last).
type QueryEvent struct {
	Query            string    `json:"query"`
	SearchType       string    `json:"search_type"`
	ResultProductIDs []uint64  `json:"result_product_ids"`
	Timestamp        time.Time `json:"timestamp"`
}

type ClickEvent struct {
	ProductID uint64    `json:"product_id"`
	Query     string    `json:"query"`
	Position  int       `json:"position"`
	Timestamp time.Time `json:"timestamp"`
}

type PurchaseEvent struct {
	ProductID uint64    `json:"product_id"`
	Context   string    `json:"context"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Preferences holds decayed running counters. Every tracked event increments
// the matching counters by its event weight, then all counters are multiplied
// by the decay factor so idle preferences fade.
type Preferences struct {
	Categories     map[string]float64 `json:"categories"`
	HealthBenefits map[string]float64 `json:"health_benefits"`
}

// BehaviorProfile accumulates per-session behavior. Owned exclusively by the
// behavior store; callers get copies.
type BehaviorProfile struct {
	SessionID       string          `json:"session_id"`
	SearchHistory   []QueryEvent    `json:"search_history"`
	ClickHistory    []ClickEvent    `json:"click_history"`
	PurchaseHistory []PurchaseEvent `json:"purchase_history"`
	Preferences     Preferences     `json:"preferences"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SanitizedProfile is the non-PII view returned over HTTP.
type SanitizedProfile struct {
	SessionID     string      `json:"session_id"`
	Preferences   Preferences `json:"preferences"`
	SearchCount   int         `json:"search_count"`
	ClickCount    int         `json:"click_count"`
	PurchaseCount int         `json:"purchase_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
