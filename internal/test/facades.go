package test

import (
	"context"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/poller"
)

// DashboardFacadeStub implements the HTTP facade with overridable behaviour.
// Unset overrides return harmless defaults.
type DashboardFacadeStub struct {
	AuthenticatorStub

	LoginFn          func(ctx context.Context, creds model.Credentials) (*model.Session, error)
	SendOTPFn        func(ctx context.Context, email, captcha, remoteIP string) error
	VerifyOTPFn      func(ctx context.Context, email, code string, rememberMe bool) (*model.Session, error)
	BeginOAuthFn     func(rememberMe bool, next string) (model.OAuthStart, error)
	CompleteOAuthFn  func(ctx context.Context, code, state, verifier string) (*model.Session, string, error)
	BootstrapFn      func(ctx context.Context, session model.Session) model.Bootstrap
	MeFn             func(ctx context.Context, token string) (*model.Profile, error)
	LogoutFn         func(ctx context.Context, token string)
	PurchaseFn       func(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error)
	PurchaseWaitFn   func(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error)
	StatusFn         func(ctx context.Context, userID, orderID string) (model.PurchaseResult, error)
	PurchasesFn      func(ctx context.Context, userID string) ([]model.PurchaseResult, error)
	RefreshOrderFn   func(ctx context.Context, owner model.Owner, orderID string) (model.PurchaseResult, error)
	WatchFn          func(ctx context.Context, owner model.Owner, orderID string, fn func(poller.Attempt)) (model.PurchaseResult, error)
	PlansFn          func(ctx context.Context) ([]model.Plan, error)
	CheckoutFn       func(ctx context.Context, identity model.Identity, planID string) (*model.CheckoutSession, error)
	OrdersFn         func(ctx context.Context, token string) ([]model.Order, error)
	OrderFn          func(ctx context.Context, token, id string) (*model.Order, error)
	ProductsFn       func(ctx context.Context, token string) ([]model.Product, error)
	SubscriptionFn   func(ctx context.Context, token, productID string) (*model.Product, error)
	TicketsFn        func(ctx context.Context, token string) ([]model.Ticket, error)
	TicketFn         func(ctx context.Context, token, id string) (*model.Ticket, error)
	CreateTicketFn   func(ctx context.Context, token, subject, body string) (*model.Ticket, error)
	ReplyTicketFn    func(ctx context.Context, token, id, body string) (*model.Ticket, error)
	HealthErr        error
}

func (s DashboardFacadeStub) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, creds)
	}
	return &model.Session{AccessToken: "access", RefreshToken: "refresh", RememberMe: creds.RememberMe}, nil
}

func (s DashboardFacadeStub) SendOTP(ctx context.Context, email, captcha, remoteIP string) error {
	if s.SendOTPFn != nil {
		return s.SendOTPFn(ctx, email, captcha, remoteIP)
	}
	return nil
}

func (s DashboardFacadeStub) VerifyOTP(ctx context.Context, email, code string, rememberMe bool) (*model.Session, error) {
	if s.VerifyOTPFn != nil {
		return s.VerifyOTPFn(ctx, email, code, rememberMe)
	}
	return &model.Session{AccessToken: "access", RefreshToken: "refresh", RememberMe: rememberMe}, nil
}

func (s DashboardFacadeStub) BeginOAuth(rememberMe bool, next string) (model.OAuthStart, error) {
	if s.BeginOAuthFn != nil {
		return s.BeginOAuthFn(rememberMe, next)
	}
	return model.OAuthStart{URL: "https://auth.example/authorize", Verifier: "verifier"}, nil
}

func (s DashboardFacadeStub) CompleteOAuth(ctx context.Context, code, state, verifier string) (*model.Session, string, error) {
	if s.CompleteOAuthFn != nil {
		return s.CompleteOAuthFn(ctx, code, state, verifier)
	}
	return &model.Session{AccessToken: "access", RefreshToken: "refresh"}, "/dashboard", nil
}

func (s DashboardFacadeStub) Bootstrap(ctx context.Context, session model.Session) model.Bootstrap {
	if s.BootstrapFn != nil {
		return s.BootstrapFn(ctx, session)
	}
	return model.Bootstrap{}
}

func (s DashboardFacadeStub) Me(ctx context.Context, token string) (*model.Profile, error) {
	if s.MeFn != nil {
		return s.MeFn(ctx, token)
	}
	return &model.Profile{ID: "u1", Email: "u@example.com"}, nil
}

func (s DashboardFacadeStub) Logout(ctx context.Context, token string) {
	if s.LogoutFn != nil {
		s.LogoutFn(ctx, token)
	}
}

func (s DashboardFacadeStub) Purchase(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error) {
	if s.PurchaseFn != nil {
		return s.PurchaseFn(ctx, owner, req)
	}
	return model.PurchaseResult{OrderID: "1", Status: model.OrderStatusPending, Polling: true}, nil
}

func (s DashboardFacadeStub) PurchaseAndWait(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error) {
	if s.PurchaseWaitFn != nil {
		return s.PurchaseWaitFn(ctx, owner, req)
	}
	return model.PurchaseResult{OrderID: "1", Status: model.OrderStatusCompleted, SubscriptionURL: "vless://sub"}, nil
}

func (s DashboardFacadeStub) PurchaseStatus(ctx context.Context, userID, orderID string) (model.PurchaseResult, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, userID, orderID)
	}
	return model.PurchaseResult{}, domainErrors.ErrNotFound
}

func (s DashboardFacadeStub) Purchases(ctx context.Context, userID string) ([]model.PurchaseResult, error) {
	if s.PurchasesFn != nil {
		return s.PurchasesFn(ctx, userID)
	}
	return nil, nil
}

func (s DashboardFacadeStub) RefreshPurchase(ctx context.Context, owner model.Owner, orderID string) (model.PurchaseResult, error) {
	if s.RefreshOrderFn != nil {
		return s.RefreshOrderFn(ctx, owner, orderID)
	}
	return model.PurchaseResult{}, domainErrors.ErrNotFound
}

func (s DashboardFacadeStub) WatchPurchase(ctx context.Context, owner model.Owner, orderID string, fn func(poller.Attempt)) (model.PurchaseResult, error) {
	if s.WatchFn != nil {
		return s.WatchFn(ctx, owner, orderID, fn)
	}
	return model.PurchaseResult{}, domainErrors.ErrNotFound
}

func (s DashboardFacadeStub) Plans(ctx context.Context) ([]model.Plan, error) {
	if s.PlansFn != nil {
		return s.PlansFn(ctx)
	}
	return []model.Plan{{ID: "basic", Name: "Basic", Price: 5, Currency: "usd", DurationDays: 30}}, nil
}

func (s DashboardFacadeStub) Checkout(ctx context.Context, identity model.Identity, planID string) (*model.CheckoutSession, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, identity, planID)
	}
	return &model.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

func (s DashboardFacadeStub) Orders(ctx context.Context, token string) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, token)
	}
	return nil, nil
}

func (s DashboardFacadeStub) Order(ctx context.Context, token, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, token, id)
	}
	return nil, domainErrors.ErrNotFound
}

func (s DashboardFacadeStub) Products(ctx context.Context, token string) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, token)
	}
	return nil, nil
}

func (s DashboardFacadeStub) SubscriptionLink(ctx context.Context, token, productID string) (*model.Product, error) {
	if s.SubscriptionFn != nil {
		return s.SubscriptionFn(ctx, token, productID)
	}
	return nil, domainErrors.ErrNotFound
}

func (s DashboardFacadeStub) Tickets(ctx context.Context, token string) ([]model.Ticket, error) {
	if s.TicketsFn != nil {
		return s.TicketsFn(ctx, token)
	}
	return nil, nil
}

func (s DashboardFacadeStub) Ticket(ctx context.Context, token, id string) (*model.Ticket, error) {
	if s.TicketFn != nil {
		return s.TicketFn(ctx, token, id)
	}
	return nil, domainErrors.ErrNotFound
}

func (s DashboardFacadeStub) CreateTicket(ctx context.Context, token, subject, body string) (*model.Ticket, error) {
	if s.CreateTicketFn != nil {
		return s.CreateTicketFn(ctx, token, subject, body)
	}
	return &model.Ticket{ID: "t1", Subject: subject, Status: "open"}, nil
}

func (s DashboardFacadeStub) ReplyTicket(ctx context.Context, token, id, body string) (*model.Ticket, error) {
	if s.ReplyTicketFn != nil {
		return s.ReplyTicketFn(ctx, token, id, body)
	}
	return &model.Ticket{ID: id, Status: "open"}, nil
}

// HealthCheck returns HealthErr.
func (s DashboardFacadeStub) HealthCheck(ctx context.Context) error {
	return s.HealthErr
}
