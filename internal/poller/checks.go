package poller

import (
	"context"
	"errors"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// StatusSource reports the provisioning state of an order.
type StatusSource interface {
	PurchaseStatus(ctx context.Context, token, orderID string) (*model.Provisioning, error)
}

// ProductSource returns the subscription of a provisioned product.
type ProductSource interface {
	ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error)
}

// OrderCheck polls the order status endpoint.
func OrderCheck(src StatusSource, token, orderID string) CheckFunc {
	return func(ctx context.Context) (model.Provisioning, error) {
		obs, err := src.PurchaseStatus(ctx, token, orderID)
		if err != nil {
			return model.Provisioning{OrderID: orderID}, err
		}
		return *obs, nil
	}
}

// ProductCheck polls the product of a completed order. A product the
// backend does not know yet is still being generated and reported as
// processing.
func ProductCheck(src ProductSource, token, orderID, productID string) CheckFunc {
	return func(ctx context.Context) (model.Provisioning, error) {
		obs := model.Provisioning{OrderID: orderID, ProductID: productID, Status: model.OrderStatusProcessing}
		product, err := src.ProductSubscription(ctx, token, productID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return obs, nil
		}
		if err != nil {
			return obs, err
		}
		if product.SubscriptionURL != "" {
			obs.Status = model.OrderStatusCompleted
			obs.SubscriptionURL = product.SubscriptionURL
		}
		return obs, nil
	}
}
