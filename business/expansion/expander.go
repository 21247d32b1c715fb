package expansion

import "strings"

const (
	defaultMaxVariants   = 5
	defaultMaxVariantLen = 120
)

// MatchedKeyword is a dictionary keyword found inside a query.
type MatchedKeyword struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// Variant is one expanded query. The original query is always the first
// variant with no justifying keywords.
type Variant struct {
	Query    string   `json:"query"`
	Keywords []string `json:"keywords,omitempty"`
}

type Expander struct {
	MaxVariants   int
	MaxVariantLen int
}

func NewExpander() *Expander {
	return &Expander{
		MaxVariants:   defaultMaxVariants,
		MaxVariantLen: defaultMaxVariantLen,
	}
}

// MatchedKeywords scans the query for dictionary keywords (substring match,
// case-insensitive). Order follows the compiled dictionary order so output is
// deterministic for a given query.
func (e *Expander) MatchedKeywords(query string) []MatchedKeyword {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matched []MatchedKeyword
	for _, kw := range allKeywords {
		if strings.Contains(q, kw) {
			matched = append(matched, MatchedKeyword{
				Keyword:  kw,
				Category: keywordCategory[kw],
			})
		}
	}

	return matched
}

// Expand returns the query variants, original first. Variants append related
// dictionary terms (up to two, from different categories) that the query does
// not already contain. Expansion never fails: a query without dictionary
// matches yields just the original.
func (e *Expander) Expand(query string) []Variant {
	base := strings.ToLower(strings.TrimSpace(query))
	variants := []Variant{{Query: e.truncate(base)}}

	maxVariants := e.MaxVariants
	if maxVariants <= 0 {
		maxVariants = defaultMaxVariants
	}

	matched := e.MatchedKeywords(base)
	if len(matched) == 0 {
		return variants
	}

	terms := e.relatedTerms(base, matched)
	if len(terms) == 0 {
		return variants
	}

	seen := map[string]bool{variants[0].Query: true}

	appendVariant := func(v Variant) bool {
		v.Query = e.truncate(v.Query)
		if seen[v.Query] {
			return len(variants) < maxVariants
		}
		seen[v.Query] = true
		variants = append(variants, v)
		return len(variants) < maxVariants
	}

	// single-term variants first, then cross-category pairs
	for _, t := range terms {
		if !appendVariant(Variant{
			Query:    base + " " + t.Keyword,
			Keywords: []string{t.Keyword},
		}) {
			return variants
		}
	}

	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			if terms[i].Category == terms[j].Category {
				continue
			}
			if !appendVariant(Variant{
				Query:    base + " " + terms[i].Keyword + " " + terms[j].Keyword,
				Keywords: []string{terms[i].Keyword, terms[j].Keyword},
			}) {
				return variants
			}
		}
	}

	return variants
}

// relatedTerms collects expansion terms for the matched keywords, skipping
// anything the query already contains, deduplicated in match order.
func (e *Expander) relatedTerms(base string, matched []MatchedKeyword) []MatchedKeyword {
	var terms []MatchedKeyword
	seen := make(map[string]bool)

	for _, m := range matched {
		for _, rel := range relations[m.Keyword] {
			if seen[rel] || strings.Contains(base, rel) {
				continue
			}
			seen[rel] = true
			terms = append(terms, MatchedKeyword{
				Keyword:  rel,
				Category: keywordCategory[rel],
			})
		}
	}

	return terms
}

func (e *Expander) truncate(q string) string {
	maxLen := e.MaxVariantLen
	if maxLen <= 0 {
		maxLen = defaultMaxVariantLen
	}

	runes := []rune(q)
	if len(runes) <= maxLen {
		return q
	}
	return string(runes[:maxLen])
}
