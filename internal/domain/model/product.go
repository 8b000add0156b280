package model

import "time"

// Product is a provisioned subscription delivered after order completion.
type Product struct {
	ID              string
	Name            string
	SubscriptionURL string
	BuyTime         time.Time
	EndTime         time.Time
}

// Active reports whether the subscription validity window covers now.
func (p Product) Active(now time.Time) bool {
	if p.EndTime.IsZero() {
		return false
	}
	if !p.BuyTime.IsZero() && now.Before(p.BuyTime) {
		return false
	}
	return now.Before(p.EndTime)
}

// Provisioning is a single observation of order fulfilment progress.
type Provisioning struct {
	OrderID         string
	Status          OrderStatus
	ProductID       string
	SubscriptionURL string
}

// Ready reports whether the subscription link is available.
func (p Provisioning) Ready() bool {
	return p.SubscriptionURL != ""
}
