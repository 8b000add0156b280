package model

import (
	"strings"
	"time"
)

// OrderStatus describes provisioning lifecycle reported by the backend.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
)

// IsTerminal reports whether the backend will not move the order any further.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// ParseOrderStatus maps a backend status payload onto OrderStatus.
// The is_failed/is_completed flags win over the textual status. Unknown values
// map to processing so that pollers keep going.
func ParseOrderStatus(status string, isCompleted, isFailed bool) OrderStatus {
	switch {
	case isFailed:
		return OrderStatusFailed
	case isCompleted:
		return OrderStatusCompleted
	}

	normalized := OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	switch normalized {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusFailed:
		return normalized
	case "":
		return OrderStatusPending
	default:
		return OrderStatusProcessing
	}
}

// Order describes a purchase record kept by the backend.
type Order struct {
	ID        string
	PlanID    string
	PlanName  string
	Amount    float64
	Currency  string
	Status    OrderStatus
	ProductID string
	CreatedAt time.Time
	UpdatedAt time.Time
}
