package model

import (
	"testing"
	"time"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "pending"},
		{"processing", OrderStatusProcessing, "processing"},
		{"completed", OrderStatusCompleted, "completed"},
		{"failed", OrderStatusFailed, "failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		name      string
		status    string
		completed bool
		failed    bool
		want      OrderStatus
	}{
		{name: "failed flag wins", status: "processing", completed: true, failed: true, want: OrderStatusFailed},
		{name: "completed flag", status: "pending", completed: true, want: OrderStatusCompleted},
		{name: "textual completed", status: "COMPLETED", want: OrderStatusCompleted},
		{name: "textual pending", status: " Pending ", want: OrderStatusPending},
		{name: "empty", status: "", want: OrderStatusPending},
		{name: "unknown keeps polling", status: "generating_product", want: OrderStatusProcessing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseOrderStatus(tc.status, tc.completed, tc.failed); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	if OrderStatusPending.IsTerminal() || OrderStatusProcessing.IsTerminal() {
		t.Fatal("pending and processing must not be terminal")
	}
	if !OrderStatusCompleted.IsTerminal() || !OrderStatusFailed.IsTerminal() {
		t.Fatal("completed and failed must be terminal")
	}
}

func TestProductActive(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		product Product
		want    bool
	}{
		{name: "no window", product: Product{}, want: false},
		{name: "inside", product: Product{BuyTime: now.AddDate(0, 0, -1), EndTime: now.AddDate(0, 1, 0)}, want: true},
		{name: "expired", product: Product{BuyTime: now.AddDate(0, -2, 0), EndTime: now.AddDate(0, -1, 0)}, want: false},
		{name: "not started", product: Product{BuyTime: now.AddDate(0, 0, 1), EndTime: now.AddDate(0, 1, 0)}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.product.Active(now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPurchaseApplyAndResult(t *testing.T) {
	p := &Purchase{OrderID: "o-1", Status: OrderStatusPending, Tracking: TrackingActive, ProductID: "keep"}
	p.Apply(Provisioning{Status: OrderStatusCompleted, SubscriptionURL: "https://sub/1"})
	if p.ProductID != "keep" {
		t.Fatalf("empty product id must not overwrite, got %q", p.ProductID)
	}
	res := p.Result()
	if res.Status != OrderStatusCompleted || res.SubscriptionURL != "https://sub/1" || !res.Polling {
		t.Fatalf("unexpected result %+v", res)
	}

	p.Tracking = TrackingStalled
	if res := p.Result(); !res.TimedOut || res.Polling {
		t.Fatalf("stalled purchase must report timeout, got %+v", res)
	}
}
