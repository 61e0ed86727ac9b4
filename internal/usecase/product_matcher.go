package usecase

import "github.com/comparaqp/backend/internal/domain"

// Default product matching parameters. Product resolution is more
// conservative than brand/category resolution because a false merge here
// corrupts price comparisons across stores.
const (
	defaultProductThreshold      = 0.80
	defaultMinCommonTokens       = 3
	defaultTokenOverlapThreshold = 0.70
)

// MatcherConfig holds configuration for the product matcher
type MatcherConfig struct {
	Threshold             float64
	MinCommonTokens       int
	TokenOverlapThreshold float64
}

// ProductMatcher decides whether an incoming product name refers to an
// existing catalog product. Candidates are always scoped to a single brand:
// that bounds the scan and keeps similarly-named products of different
// brands from ever collapsing into one row.
type ProductMatcher struct {
	threshold             float64
	minCommonTokens       int
	tokenOverlapThreshold float64
}

// NewProductMatcher creates a product matcher, applying defaults for any
// zero-valued configuration field.
func NewProductMatcher(config MatcherConfig) *ProductMatcher {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultProductThreshold
	}

	minCommon := config.MinCommonTokens
	if minCommon <= 0 {
		minCommon = defaultMinCommonTokens
	}

	overlap := config.TokenOverlapThreshold
	if overlap <= 0 {
		overlap = defaultTokenOverlapThreshold
	}

	return &ProductMatcher{
		threshold:             threshold,
		minCommonTokens:       minCommon,
		tokenOverlapThreshold: overlap,
	}
}

// Match returns the candidate the name resolves to, or nil when no stage
// matches and a new product should be created. Stages, in order:
//
//  1. Exact match on normalized name.
//  2. Fuzzy match: best similarity ratio at or above the threshold.
//  3. Token fallback: best overlap ratio among candidates sharing at least
//     minCommonTokens tokens with overlap at or above the token threshold.
//     This catches word-order and pack-size differences that depress the
//     edit-distance ratio on long names.
func (m *ProductMatcher) Match(name string, candidates []*domain.Product) *domain.Product {
	key := NormalizeKey(name)
	for _, candidate := range candidates {
		if NormalizeKey(candidate.Name) == key {
			return candidate
		}
	}

	var best *domain.Product
	bestRatio := 0.0
	for _, candidate := range candidates {
		ratio := Ratio(name, candidate.Name)
		if ratio > bestRatio && ratio >= m.threshold {
			bestRatio = ratio
			best = candidate
		}
	}
	if best != nil {
		return best
	}

	bestOverlap := 0.0
	for _, candidate := range candidates {
		common, overlap := TokenOverlap(name, candidate.Name)
		if common >= m.minCommonTokens && overlap >= m.tokenOverlapThreshold && overlap > bestOverlap {
			bestOverlap = overlap
			best = candidate
		}
	}
	return best
}
