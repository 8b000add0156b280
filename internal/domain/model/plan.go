package model

// Plan is a purchasable subscription offer.
type Plan struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	DurationDays  int     `json:"duration_days"`
	TrafficGB     int     `json:"traffic_gb"`
	StripePriceID string  `json:"stripe_price_id"`
}
