package model

import "time"

// TrackingState tells whether a purchase is still being followed locally.
type TrackingState string

const (
	// TrackingActive purchases are polled by the background tracker.
	TrackingActive TrackingState = "tracking"
	// TrackingSettled purchases reached a terminal status.
	TrackingSettled TrackingState = "settled"
	// TrackingStalled purchases gave up polling and wait for a manual refresh.
	TrackingStalled TrackingState = "stalled"
)

// PurchaseRequest is submitted by the user to buy a plan.
type PurchaseRequest struct {
	PlanID    string
	Months    int
	PromoCode string
}

// PurchaseReceipt is the immediate backend answer to a purchase call.
type PurchaseReceipt struct {
	OrderID         string
	Status          string
	ProductID       string
	SubscriptionURL string
}

// Purchase is the local tracking record of an order awaiting fulfilment.
// Backend tokens are never part of it.
type Purchase struct {
	ID              string
	UserID          string
	OrderID         string
	PlanID          string
	Status          OrderStatus
	Tracking        TrackingState
	ProductID       string
	SubscriptionURL string
	Attempts        int
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Apply copies an observation onto the purchase.
func (p *Purchase) Apply(obs Provisioning) {
	p.Status = obs.Status
	if obs.ProductID != "" {
		p.ProductID = obs.ProductID
	}
	if obs.SubscriptionURL != "" {
		p.SubscriptionURL = obs.SubscriptionURL
	}
}

// Result converts purchase into a client facing summary.
func (p *Purchase) Result() PurchaseResult {
	return PurchaseResult{
		OrderID:         p.OrderID,
		Status:          p.Status,
		ProductID:       p.ProductID,
		SubscriptionURL: p.SubscriptionURL,
		Attempts:        p.Attempts,
		Polling:         p.Tracking == TrackingActive,
		TimedOut:        p.Tracking == TrackingStalled,
		LastError:       p.LastError,
	}
}

// PurchaseResult summarises purchase progress.
type PurchaseResult struct {
	OrderID         string
	Status          OrderStatus
	ProductID       string
	SubscriptionURL string
	Attempts        int
	// Polling is true while fulfilment is still being awaited.
	Polling bool
	// TimedOut means polling gave up and a manual refresh is required.
	TimedOut  bool
	LastError string
}

// Owner identifies the user on whose behalf backend calls are made.
type Owner struct {
	UserID string
	Token  string
}
