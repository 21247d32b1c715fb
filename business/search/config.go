package search

import "time"

const (
	defaultSemanticWeight = 0.5
	defaultKeywordWeight  = 0.5

	defaultSemanticTimeout = 3 * time.Second
	defaultKeywordTimeout  = 1500 * time.Millisecond

	defaultMaxResults = 10
	maxResultsCeiling = 50

	defaultPersonalizeCap = 0.5

	// every individual boost is clamped into this range
	boostFloor = 0.5
	boostCeil  = 2.0
)

type Config struct {
	SemanticWeight float64
	KeywordWeight  float64

	SemanticTimeout time.Duration
	KeywordTimeout  time.Duration

	MaxResults     int
	PersonalizeCap float64
}

func DefaultConfig() Config {
	return Config{
		SemanticWeight:  defaultSemanticWeight,
		KeywordWeight:   defaultKeywordWeight,
		SemanticTimeout: defaultSemanticTimeout,
		KeywordTimeout:  defaultKeywordTimeout,
		MaxResults:      defaultMaxResults,
		PersonalizeCap:  defaultPersonalizeCap,
	}
}

// Request carries one search call's parameters. Toggles default to on and
// exist for A/B experiments; zero-value booleans here mean "disabled by the
// caller", so the REST layer sets them explicitly.
type Request struct {
	Query     string
	SessionID string
	Limit     int

	SemanticWeight *float64
	KeywordWeight  *float64

	Category string
	InStock  *bool
	MinScore float64

	Country string
	Region  string

	Expansion       bool
	Seasonal        bool
	Regional        bool
	Personalization bool
}

type Weights struct {
	Semantic float64 `json:"semantic"`
	Keyword  float64 `json:"keyword"`
}

// resolveWeights layers request overrides on the service defaults, the same
// fallback-to-default shape the config loading uses everywhere else.
func (c Config) resolveWeights(req Request) Weights {
	w := Weights{Semantic: c.SemanticWeight, Keyword: c.KeywordWeight}

	if req.SemanticWeight != nil && req.KeywordWeight != nil {
		w.Semantic = *req.SemanticWeight
		w.Keyword = *req.KeywordWeight
	}

	if w.Semantic <= 0 && w.Keyword <= 0 {
		w.Semantic = defaultSemanticWeight
		w.Keyword = defaultKeywordWeight
	}

	return w
}

func (c Config) resolveLimit(limit int) int {
	if limit <= 0 {
		limit = c.MaxResults
	}
	if limit <= 0 {
		limit = defaultMaxResults
	}
	if limit > maxResultsCeiling {
		limit = maxResultsCeiling
	}
	return limit
}

func clampBoost(b float64) float64 {
	if b < boostFloor {
		return boostFloor
	}
	if b > boostCeil {
		return boostCeil
	}
	return b
}
