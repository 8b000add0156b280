package dto

import "time"

// PurchaseRequest starts a subscription purchase.
type PurchaseRequest struct {
	PlanID    string `json:"plan_id"`
	Months    int    `json:"months,omitempty"`
	PromoCode string `json:"promo_code,omitempty"`
}

// PurchaseResponse reports purchase progress.
type PurchaseResponse struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	ProductID       string `json:"product_id,omitempty"`
	SubscriptionURL string `json:"subscription_url,omitempty"`
	Attempts        int    `json:"attempts"`
	Polling         bool   `json:"polling"`
	TimedOut        bool   `json:"timed_out"`
	LastError       string `json:"last_error,omitempty"`
	Message         string `json:"message,omitempty"`
}

// StatusFrame is a single websocket message of the purchase status stream.
type StatusFrame struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	Attempt         int    `json:"attempt"`
	SubscriptionURL string `json:"subscription_url,omitempty"`
	TimedOut        bool   `json:"timed_out,omitempty"`
	Error           string `json:"error,omitempty"`
}

// PlanResponse describes a purchasable plan.
type PlanResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	DurationDays int     `json:"duration_days"`
	TrafficGB    int     `json:"traffic_gb,omitempty"`
}

// CheckoutRequest asks for a hosted payment page.
type CheckoutRequest struct {
	PlanID string `json:"plan_id"`
}

// CheckoutResponse points the browser to the payment page.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// OrderResponse describes a backend order.
type OrderResponse struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id,omitempty"`
	PlanName  string    `json:"plan_name,omitempty"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Status    string    `json:"status"`
	ProductID string    `json:"product_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductResponse describes a provisioned subscription.
type ProductResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	SubscriptionURL string     `json:"subscription_url,omitempty"`
	BuyTime         *time.Time `json:"buy_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	Active          bool       `json:"active"`
}
