package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/poller"
	"github.com/polkiloo/vpndash/internal/usecase"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FacadeParams lists use cases combined by DashboardFacade.
type FacadeParams struct {
	fx.In

	Auth      *usecase.AuthUseCase
	Purchases *usecase.PurchaseUseCase
	Catalog   *usecase.CatalogUseCase
	Checkout  *usecase.CheckoutUseCase
	Orders    *usecase.OrderUseCase
	Tickets   *usecase.TicketUseCase
	Health    HealthChecker
}

// DashboardFacade is the single entry point for HTTP handlers and the tracker.
type DashboardFacade struct {
	auth      *usecase.AuthUseCase
	purchases *usecase.PurchaseUseCase
	catalog   *usecase.CatalogUseCase
	checkout  *usecase.CheckoutUseCase
	orders    *usecase.OrderUseCase
	tickets   *usecase.TicketUseCase
	health    HealthChecker
}

func NewDashboardFacade(p FacadeParams) *DashboardFacade {
	return &DashboardFacade{
		auth:      p.Auth,
		purchases: p.Purchases,
		catalog:   p.Catalog,
		checkout:  p.Checkout,
		orders:    p.Orders,
		tickets:   p.Tickets,
		health:    p.Health,
	}
}

func (f *DashboardFacade) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	return f.auth.Login(ctx, creds)
}

func (f *DashboardFacade) SendOTP(ctx context.Context, email, captcha, remoteIP string) error {
	return f.auth.SendOTP(ctx, email, captcha, remoteIP)
}

func (f *DashboardFacade) VerifyOTP(ctx context.Context, email, code string, rememberMe bool) (*model.Session, error) {
	return f.auth.VerifyOTP(ctx, email, code, rememberMe)
}

func (f *DashboardFacade) BeginOAuth(rememberMe bool, next string) (model.OAuthStart, error) {
	return f.auth.BeginOAuth(rememberMe, next)
}

func (f *DashboardFacade) CompleteOAuth(ctx context.Context, code, state, verifier string) (*model.Session, string, error) {
	return f.auth.CompleteOAuth(ctx, code, state, verifier)
}

func (f *DashboardFacade) Bootstrap(ctx context.Context, session model.Session) model.Bootstrap {
	return f.auth.Bootstrap(ctx, session)
}

func (f *DashboardFacade) Identify(ctx context.Context, token string) (model.Identity, error) {
	return f.auth.Identify(ctx, token)
}

func (f *DashboardFacade) Expired(token string) bool {
	return f.auth.Expired(token)
}

func (f *DashboardFacade) Me(ctx context.Context, token string) (*model.Profile, error) {
	return f.auth.Me(ctx, token)
}

func (f *DashboardFacade) RefreshSession(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error) {
	return f.auth.RefreshSession(ctx, refreshToken, rememberMe)
}

func (f *DashboardFacade) Logout(ctx context.Context, token string) {
	f.auth.Logout(ctx, token)
}

func (f *DashboardFacade) Purchase(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error) {
	return f.purchases.Purchase(ctx, owner, req)
}

func (f *DashboardFacade) PurchaseAndWait(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error) {
	return f.purchases.PurchaseAndWait(ctx, owner, req)
}

func (f *DashboardFacade) PurchaseStatus(ctx context.Context, userID, orderID string) (model.PurchaseResult, error) {
	return f.purchases.Status(ctx, userID, orderID)
}

func (f *DashboardFacade) Purchases(ctx context.Context, userID string) ([]model.PurchaseResult, error) {
	return f.purchases.History(ctx, userID)
}

func (f *DashboardFacade) RefreshPurchase(ctx context.Context, owner model.Owner, orderID string) (model.PurchaseResult, error) {
	return f.purchases.Refresh(ctx, owner, orderID)
}

func (f *DashboardFacade) WatchPurchase(ctx context.Context, owner model.Owner, orderID string, fn func(poller.Attempt)) (model.PurchaseResult, error) {
	return f.purchases.Watch(ctx, owner, orderID, fn)
}

// PurchasesForTracking claims purchases for the background tracker.
func (f *DashboardFacade) PurchasesForTracking(ctx context.Context, limit int) ([]model.Purchase, error) {
	return f.purchases.PurchasesForTracking(ctx, limit)
}

// TrackPurchase runs a single tracker check.
func (f *DashboardFacade) TrackPurchase(ctx context.Context, purchase model.Purchase) error {
	return f.purchases.TrackPurchase(ctx, purchase)
}

func (f *DashboardFacade) Plans(ctx context.Context) ([]model.Plan, error) {
	return f.catalog.Plans(ctx)
}

func (f *DashboardFacade) Checkout(ctx context.Context, identity model.Identity, planID string) (*model.CheckoutSession, error) {
	return f.checkout.Checkout(ctx, identity, planID)
}

func (f *DashboardFacade) Orders(ctx context.Context, token string) ([]model.Order, error) {
	return f.orders.Orders(ctx, token)
}

func (f *DashboardFacade) Order(ctx context.Context, token, id string) (*model.Order, error) {
	return f.orders.Order(ctx, token, id)
}

func (f *DashboardFacade) Products(ctx context.Context, token string) ([]model.Product, error) {
	return f.orders.Products(ctx, token)
}

func (f *DashboardFacade) SubscriptionLink(ctx context.Context, token, productID string) (*model.Product, error) {
	return f.orders.SubscriptionLink(ctx, token, productID)
}

func (f *DashboardFacade) Tickets(ctx context.Context, token string) ([]model.Ticket, error) {
	return f.tickets.List(ctx, token)
}

func (f *DashboardFacade) Ticket(ctx context.Context, token, id string) (*model.Ticket, error) {
	return f.tickets.Get(ctx, token, id)
}

func (f *DashboardFacade) CreateTicket(ctx context.Context, token, subject, body string) (*model.Ticket, error) {
	return f.tickets.Create(ctx, token, subject, body)
}

func (f *DashboardFacade) ReplyTicket(ctx context.Context, token, id, body string) (*model.Ticket, error) {
	return f.tickets.Reply(ctx, token, id, body)
}

// HealthCheck pings the purchase ledger.
func (f *DashboardFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
