package usecase

import (
	"context"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// CheckoutUseCase creates hosted payment pages for plans.
type CheckoutUseCase struct {
	catalog *CatalogUseCase
	gateway PaymentGateway
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(catalog *CatalogUseCase, gateway PaymentGateway) *CheckoutUseCase {
	return &CheckoutUseCase{catalog: catalog, gateway: gateway}
}

// Checkout returns a payment session for planID.
func (u *CheckoutUseCase) Checkout(ctx context.Context, identity model.Identity, planID string) (*model.CheckoutSession, error) {
	plan, err := u.catalog.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return u.gateway.CreateSession(ctx, model.CheckoutRequest{
		UserID: identity.UserID,
		Email:  identity.Email,
		Plan:   *plan,
	})
}
