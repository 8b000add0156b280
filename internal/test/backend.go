package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// BackendStub simulates the dashboard backend API via function overrides.
// Unset overrides return ErrUnavailable unless noted otherwise.
type BackendStub struct {
	mu    sync.Mutex
	Calls map[string]int

	LoginFn               func(ctx context.Context, email, password string) (*model.Session, error)
	SendOTPFn             func(ctx context.Context, email string) error
	VerifyOTPFn           func(ctx context.Context, email, code string) (*model.Session, error)
	RefreshFn             func(ctx context.Context, refreshToken string) (*model.Session, error)
	LogoutFn              func(ctx context.Context, token string) error
	MeFn                  func(ctx context.Context, token string) (*model.Profile, error)
	PlansFn               func(ctx context.Context) ([]model.Plan, error)
	PurchaseFn            func(ctx context.Context, token string, req model.PurchaseRequest) (*model.PurchaseReceipt, error)
	PurchaseStatusFn      func(ctx context.Context, token, orderID string) (*model.Provisioning, error)
	ProductSubscriptionFn func(ctx context.Context, token, productID string) (*model.Product, error)
	OrdersFn              func(ctx context.Context, token string) ([]model.Order, error)
	OrderFn               func(ctx context.Context, token, id string) (*model.Order, error)
	ProductsFn            func(ctx context.Context, token string) ([]model.Product, error)
	TicketsFn             func(ctx context.Context, token string) ([]model.Ticket, error)
	TicketFn              func(ctx context.Context, token, id string) (*model.Ticket, error)
	CreateTicketFn        func(ctx context.Context, token, subject, body string) (*model.Ticket, error)
	ReplyTicketFn         func(ctx context.Context, token, id, body string) (*model.Ticket, error)
}

func (s *BackendStub) called(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Calls == nil {
		s.Calls = make(map[string]int)
	}
	s.Calls[name]++
}

// CallCount returns how many times operation name was invoked.
func (s *BackendStub) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[name]
}

func (s *BackendStub) Login(ctx context.Context, email, password string) (*model.Session, error) {
	s.called("Login")
	if s.LoginFn != nil {
		return s.LoginFn(ctx, email, password)
	}
	return nil, domainErrors.ErrUnavailable
}

// SendOTP succeeds by default.
func (s *BackendStub) SendOTP(ctx context.Context, email string) error {
	s.called("SendOTP")
	if s.SendOTPFn != nil {
		return s.SendOTPFn(ctx, email)
	}
	return nil
}

func (s *BackendStub) VerifyOTP(ctx context.Context, email, code string) (*model.Session, error) {
	s.called("VerifyOTP")
	if s.VerifyOTPFn != nil {
		return s.VerifyOTPFn(ctx, email, code)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	s.called("Refresh")
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, refreshToken)
	}
	return nil, domainErrors.ErrUnavailable
}

// Logout succeeds by default.
func (s *BackendStub) Logout(ctx context.Context, token string) error {
	s.called("Logout")
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx, token)
	}
	return nil
}

func (s *BackendStub) Me(ctx context.Context, token string) (*model.Profile, error) {
	s.called("Me")
	if s.MeFn != nil {
		return s.MeFn(ctx, token)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Plans(ctx context.Context) ([]model.Plan, error) {
	s.called("Plans")
	if s.PlansFn != nil {
		return s.PlansFn(ctx)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Purchase(ctx context.Context, token string, req model.PurchaseRequest) (*model.PurchaseReceipt, error) {
	s.called("Purchase")
	if s.PurchaseFn != nil {
		return s.PurchaseFn(ctx, token, req)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) PurchaseStatus(ctx context.Context, token, orderID string) (*model.Provisioning, error) {
	s.called("PurchaseStatus")
	if s.PurchaseStatusFn != nil {
		return s.PurchaseStatusFn(ctx, token, orderID)
	}
	return nil, domainErrors.ErrUnavailable
}

// ProductSubscription reports not found by default.
func (s *BackendStub) ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error) {
	s.called("ProductSubscription")
	if s.ProductSubscriptionFn != nil {
		return s.ProductSubscriptionFn(ctx, token, productID)
	}
	return nil, domainErrors.ErrNotFound
}

func (s *BackendStub) Orders(ctx context.Context, token string) ([]model.Order, error) {
	s.called("Orders")
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, token)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Order(ctx context.Context, token, id string) (*model.Order, error) {
	s.called("Order")
	if s.OrderFn != nil {
		return s.OrderFn(ctx, token, id)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Products(ctx context.Context, token string) ([]model.Product, error) {
	s.called("Products")
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, token)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Tickets(ctx context.Context, token string) ([]model.Ticket, error) {
	s.called("Tickets")
	if s.TicketsFn != nil {
		return s.TicketsFn(ctx, token)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) Ticket(ctx context.Context, token, id string) (*model.Ticket, error) {
	s.called("Ticket")
	if s.TicketFn != nil {
		return s.TicketFn(ctx, token, id)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) CreateTicket(ctx context.Context, token, subject, body string) (*model.Ticket, error) {
	s.called("CreateTicket")
	if s.CreateTicketFn != nil {
		return s.CreateTicketFn(ctx, token, subject, body)
	}
	return nil, domainErrors.ErrUnavailable
}

func (s *BackendStub) ReplyTicket(ctx context.Context, token, id, body string) (*model.Ticket, error) {
	s.called("ReplyTicket")
	if s.ReplyTicketFn != nil {
		return s.ReplyTicketFn(ctx, token, id, body)
	}
	return nil, domainErrors.ErrUnavailable
}

// StatusSequence returns a PurchaseStatusFn replaying statuses; the last one repeats.
func StatusSequence(statuses ...model.Provisioning) func(context.Context, string, string) (*model.Provisioning, error) {
	var (
		mu sync.Mutex
		i  int
	)
	return func(_ context.Context, _ string, orderID string) (*model.Provisioning, error) {
		mu.Lock()
		defer mu.Unlock()
		obs := statuses[i]
		if i < len(statuses)-1 {
			i++
		}
		if obs.OrderID == "" {
			obs.OrderID = orderID
		}
		return &obs, nil
	}
}
