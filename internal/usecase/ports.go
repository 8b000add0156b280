package usecase

import (
	"context"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// AuthBackend is the part of the backend API used for sign-in.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*model.Profile, error)
}

// PurchaseBackend starts purchases and reports their fulfilment.
type PurchaseBackend interface {
	Purchase(ctx context.Context, token string, req model.PurchaseRequest) (*model.PurchaseReceipt, error)
	PurchaseStatus(ctx context.Context, token, orderID string) (*model.Provisioning, error)
	ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error)
}

// CatalogBackend lists purchasable plans.
type CatalogBackend interface {
	Plans(ctx context.Context) ([]model.Plan, error)
}

// AccountBackend reads orders and provisioned products.
type AccountBackend interface {
	Orders(ctx context.Context, token string) ([]model.Order, error)
	Order(ctx context.Context, token, id string) (*model.Order, error)
	Products(ctx context.Context, token string) ([]model.Product, error)
	ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error)
}

// SupportBackend manages support tickets.
type SupportBackend interface {
	Tickets(ctx context.Context, token string) ([]model.Ticket, error)
	Ticket(ctx context.Context, token, id string) (*model.Ticket, error)
	CreateTicket(ctx context.Context, token, subject, body string) (*model.Ticket, error)
	ReplyTicket(ctx context.Context, token, id, body string) (*model.Ticket, error)
}

// OAuthProvider runs the PKCE authorization code flow.
type OAuthProvider interface {
	AuthorizeURL(provider, redirectTo, challenge string) (string, error)
	ExchangeCode(ctx context.Context, code, verifier string) (*model.Session, error)
}

// CaptchaVerifier validates human verification tokens.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// TokenInspector reads identity claims from access tokens.
type TokenInspector interface {
	Inspect(token string) (model.Identity, error)
	Verifies() bool
}

// StateSigner protects OAuth state values.
type StateSigner interface {
	Issue(payload string) string
	Parse(state string) (string, error)
}

// PaymentGateway creates hosted payment pages.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error)
}
