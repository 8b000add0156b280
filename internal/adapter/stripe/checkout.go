package stripe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// sessionCreator is satisfied by the Stripe checkout session client.
type sessionCreator interface {
	New(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
}

// Checkout creates Stripe hosted checkout pages.
type Checkout struct {
	sessions   sessionCreator
	successURL string
	cancelURL  string
	logger     *slog.Logger
}

// NewCheckout builds Checkout. An empty secret key yields a disabled adapter.
func NewCheckout(secretKey, publicURL string, logger *slog.Logger) *Checkout {
	c := &Checkout{
		successURL: publicURL + "/dashboard/orders?checkout=success&session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  publicURL + "/dashboard/plans?checkout=cancelled",
		logger:     logger,
	}
	if secretKey != "" {
		api := &client.API{}
		api.Init(secretKey, nil)
		c.sessions = api.CheckoutSessions
	}
	return c
}

// Enabled reports whether a Stripe key is configured.
func (c *Checkout) Enabled() bool { return c.sessions != nil }

// CreateSession opens a one-off payment session for the plan.
func (c *Checkout) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if !c.Enabled() {
		return nil, domainErrors.ErrNotConfigured
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(c.successURL),
		CancelURL:         stripeapi.String(c.cancelURL),
		ClientReferenceID: stripeapi.String(req.UserID),
		LineItems:         []*stripeapi.CheckoutSessionLineItemParams{lineItem(req.Plan)},
	}
	if req.Email != "" {
		params.CustomerEmail = stripeapi.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("plan_id", req.Plan.ID)

	session, err := c.sessions.New(params)
	if err != nil {
		c.logger.ErrorContext(ctx, "stripe checkout session failed",
			slog.String("plan_id", req.Plan.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("create checkout session: %w", domainErrors.ErrUnavailable)
	}
	return &model.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func lineItem(plan model.Plan) *stripeapi.CheckoutSessionLineItemParams {
	if plan.StripePriceID != "" {
		return &stripeapi.CheckoutSessionLineItemParams{
			Price:    stripeapi.String(plan.StripePriceID),
			Quantity: stripeapi.Int64(1),
		}
	}
	currency := strings.ToLower(plan.Currency)
	if currency == "" {
		currency = string(stripeapi.CurrencyUSD)
	}
	return &stripeapi.CheckoutSessionLineItemParams{
		Quantity: stripeapi.Int64(1),
		PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripeapi.String(currency),
			UnitAmount: stripeapi.Int64(int64(math.Round(plan.Price * 100))),
			ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripeapi.String(plan.Name),
			},
		},
	}
}
