package handlers

import (
	"context"

	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/poller"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
	SendOTP(ctx context.Context, email, captcha, remoteIP string) error
	VerifyOTP(ctx context.Context, email, code string, rememberMe bool) (*model.Session, error)
	BeginOAuth(rememberMe bool, next string) (model.OAuthStart, error)
	CompleteOAuth(ctx context.Context, code, state, verifier string) (*model.Session, string, error)
	Bootstrap(ctx context.Context, session model.Session) model.Bootstrap
	Identify(ctx context.Context, token string) (model.Identity, error)
	Expired(token string) bool
	Me(ctx context.Context, token string) (*model.Profile, error)
	RefreshSession(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error)
	Logout(ctx context.Context, token string)
}

// PurchaseFacade exposes purchase tracking.
type PurchaseFacade interface {
	Purchase(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error)
	PurchaseAndWait(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error)
	PurchaseStatus(ctx context.Context, userID, orderID string) (model.PurchaseResult, error)
	Purchases(ctx context.Context, userID string) ([]model.PurchaseResult, error)
	RefreshPurchase(ctx context.Context, owner model.Owner, orderID string) (model.PurchaseResult, error)
	WatchPurchase(ctx context.Context, owner model.Owner, orderID string, fn func(poller.Attempt)) (model.PurchaseResult, error)
}

// CatalogFacade serves plans and payments.
type CatalogFacade interface {
	Plans(ctx context.Context) ([]model.Plan, error)
	Checkout(ctx context.Context, identity model.Identity, planID string) (*model.CheckoutSession, error)
}

// AccountFacade serves backend orders and products.
type AccountFacade interface {
	Orders(ctx context.Context, token string) ([]model.Order, error)
	Order(ctx context.Context, token, id string) (*model.Order, error)
	Products(ctx context.Context, token string) ([]model.Product, error)
	SubscriptionLink(ctx context.Context, token, productID string) (*model.Product, error)
}

// SupportFacade serves support tickets.
type SupportFacade interface {
	Tickets(ctx context.Context, token string) ([]model.Ticket, error)
	Ticket(ctx context.Context, token, id string) (*model.Ticket, error)
	CreateTicket(ctx context.Context, token, subject, body string) (*model.Ticket, error)
	ReplyTicket(ctx context.Context, token, id, body string) (*model.Ticket, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// DashboardFacade aggregates the full set of operations used across handlers.
type DashboardFacade interface {
	AuthFacade
	PurchaseFacade
	CatalogFacade
	AccountFacade
	SupportFacade
	HealthFacade
}
