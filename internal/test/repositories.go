package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// PurchaseRepositoryStub stores purchases in-memory for tests.
type PurchaseRepositoryStub struct {
	mu        sync.Mutex
	Purchases map[string]model.Purchase
	Updates   []model.Purchase
	CreateErr error
	UpdateErr error
	Err       error
}

// NewPurchaseRepositoryStub constructs stub repository seeded with purchases.
func NewPurchaseRepositoryStub(seed ...model.Purchase) *PurchaseRepositoryStub {
	s := &PurchaseRepositoryStub{Purchases: make(map[string]model.Purchase)}
	for _, p := range seed {
		s.Purchases[p.OrderID] = p
	}
	return s
}

// Create stores purchase unless order id is already known.
func (s *PurchaseRepositoryStub) Create(ctx context.Context, purchase *model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if s.Purchases == nil {
		s.Purchases = make(map[string]model.Purchase)
	}
	if _, ok := s.Purchases[purchase.OrderID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	s.Purchases[purchase.OrderID] = *purchase
	return nil
}

// GetByOrderID returns a copy of the stored purchase.
func (s *PurchaseRepositoryStub) GetByOrderID(ctx context.Context, orderID string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Purchases[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

// ListByUser returns purchases of user, newest first.
func (s *PurchaseRepositoryStub) ListByUser(ctx context.Context, userID string) ([]model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Purchase
	for _, p := range s.Purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SelectBatchForTracking returns purchases in tracking state.
func (s *PurchaseRepositoryStub) SelectBatchForTracking(ctx context.Context, limit int) ([]model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Purchase
	for _, p := range s.Purchases {
		if p.Tracking == model.TrackingActive {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Update overwrites stored purchase and records the call. Like the
// PostgreSQL ledger it refuses to touch settled or unknown purchases.
func (s *PurchaseRepositoryStub) Update(ctx context.Context, purchase *model.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	stored, ok := s.Purchases[purchase.OrderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Tracking == model.TrackingSettled {
		return domainErrors.ErrConflict
	}
	s.Updates = append(s.Updates, *purchase)
	s.Purchases[purchase.OrderID] = *purchase
	return nil
}

// Get returns stored purchase by order id.
func (s *PurchaseRepositoryStub) Get(orderID string) (model.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Purchases[orderID]
	return p, ok
}

// PlanCacheStub keeps plans in memory.
type PlanCacheStub struct {
	Plans  []model.Plan
	Cached bool
	GetErr error
	Sets   int
}

// Get returns cached plans.
func (s *PlanCacheStub) Get(ctx context.Context) ([]model.Plan, bool, error) {
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	return s.Plans, s.Cached, nil
}

// Set caches plans.
func (s *PlanCacheStub) Set(ctx context.Context, plans []model.Plan) error {
	s.Plans = plans
	s.Cached = true
	s.Sets++
	return nil
}

// Invalidate drops cached plans.
func (s *PlanCacheStub) Invalidate(ctx context.Context) error {
	s.Plans = nil
	s.Cached = false
	return nil
}
