package models

// Product is a single catalog search result. The catalog fields are sourced
// from the retail API and never mutated; Score, MatchReasons and PriceTier are
// derived locally and attached before the product is returned to the client.
type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	IsPrime       bool     `json:"is_prime"`
	ImageURL      string   `json:"image_url"`
	ProductURL    string   `json:"product_url"`
	Category      string   `json:"category,omitempty"`
	Brand         string   `json:"brand,omitempty"`

	// Derived enrichment, absent on raw catalog responses.
	Score        float64  `json:"score,omitempty"`
	MatchReasons []string `json:"match_reasons,omitempty"`
	PriceTier    string   `json:"price_tier,omitempty"`
}

const (
	PriceTierBudget  = "budget"
	PriceTierMid     = "mid-range"
	PriceTierPremium = "premium"
)

// TierForPrice buckets a price into one of the three display tiers.
func TierForPrice(price float64) string {
	switch {
	case price < 25:
		return PriceTierBudget
	case price < 100:
		return PriceTierMid
	default:
		return PriceTierPremium
	}
}
