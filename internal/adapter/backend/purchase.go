package backend

import (
	"context"
	"net/http"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// Plans returns the public plan catalog.
func (c *HTTPClient) Plans(ctx context.Context) ([]model.Plan, error) {
	var resp []planResponse
	if err := c.do(ctx, http.MethodGet, "/plans", "", nil, &resp); err != nil {
		return nil, err
	}
	plans := make([]model.Plan, 0, len(resp))
	for _, p := range resp {
		plans = append(plans, p.toModel())
	}
	return plans, nil
}

// Purchase submits a plan purchase. The receipt carries either a ready
// subscription link or an order id to poll.
func (c *HTTPClient) Purchase(ctx context.Context, token string, req model.PurchaseRequest) (*model.PurchaseReceipt, error) {
	var resp purchaseResponse
	body := purchaseRequest{PlanID: req.PlanID, Months: req.Months, PromoCode: req.PromoCode}
	if err := c.do(ctx, http.MethodPost, "/subscriptions/purchase", token, body, &resp); err != nil {
		return nil, err
	}
	return &model.PurchaseReceipt{
		OrderID:         string(resp.OrderID),
		Status:          resp.Status,
		ProductID:       string(resp.ProductID),
		SubscriptionURL: resp.SubscriptionURL,
	}, nil
}

// PurchaseStatus reads fulfilment progress of an order.
func (c *HTTPClient) PurchaseStatus(ctx context.Context, token, orderID string) (*model.Provisioning, error) {
	p, err := resource("/orders", orderID, "status")
	if err != nil {
		return nil, err
	}
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, p, token, nil, &resp); err != nil {
		return nil, err
	}
	id := string(resp.OrderID)
	if id == "" {
		id = orderID
	}
	return &model.Provisioning{
		OrderID:         id,
		Status:          model.ParseOrderStatus(resp.Status, resp.IsCompleted, resp.IsFailed),
		ProductID:       string(resp.ProductID),
		SubscriptionURL: resp.SubscriptionURL,
	}, nil
}

// ProductSubscription returns the subscription link of a product.
// The backend answers 404 until the product has been generated.
func (c *HTTPClient) ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error) {
	p, err := resource("/products", productID, "subscription")
	if err != nil {
		return nil, err
	}
	var resp productResponse
	if err := c.do(ctx, http.MethodGet, p, token, nil, &resp); err != nil {
		return nil, err
	}
	product := resp.toModel()
	if product.ID == "" {
		product.ID = productID
	}
	return &product, nil
}
