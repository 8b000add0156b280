package usecase

import (
	"context"
	"sort"
	"strings"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// OrderUseCase reads orders and subscriptions of the signed-in user.
type OrderUseCase struct {
	backend AccountBackend
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(backend AccountBackend) *OrderUseCase {
	return &OrderUseCase{backend: backend}
}

// Orders returns orders sorted newest first.
func (u *OrderUseCase) Orders(ctx context.Context, token string) ([]model.Order, error) {
	orders, err := u.backend.Orders(ctx, token)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// Order fetches a single order.
func (u *OrderUseCase) Order(ctx context.Context, token, id string) (*model.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.backend.Order(ctx, token, id)
}

// Products lists provisioned subscriptions.
func (u *OrderUseCase) Products(ctx context.Context, token string) ([]model.Product, error) {
	return u.backend.Products(ctx, token)
}

// SubscriptionLink returns the subscription of a product.
func (u *OrderUseCase) SubscriptionLink(ctx context.Context, token, productID string) (*model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.backend.ProductSubscription(ctx, token, productID)
}
