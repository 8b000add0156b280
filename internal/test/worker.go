package test

import (
	"context"
	"sync"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// WorkerFacadeStub feeds the provisioning tracker with prepared batches.
type WorkerFacadeStub struct {
	sync.Mutex

	// Batches are returned one per fetch; later fetches return nothing.
	Batches [][]model.Purchase
	// FetchErrs override the fetch with the same index when non-nil.
	FetchErrs []error
	TrackFn   func(ctx context.Context, purchase model.Purchase) error

	Tracked []model.Purchase
	fetches int
}

// PurchasesForTracking returns the next prepared batch.
func (s *WorkerFacadeStub) PurchasesForTracking(ctx context.Context, limit int) ([]model.Purchase, error) {
	s.Lock()
	defer s.Unlock()
	n := s.fetches
	s.fetches++
	if n < len(s.FetchErrs) && s.FetchErrs[n] != nil {
		return nil, s.FetchErrs[n]
	}
	if n < len(s.Batches) {
		return s.Batches[n], nil
	}
	return nil, nil
}

// TrackPurchase records every call.
func (s *WorkerFacadeStub) TrackPurchase(ctx context.Context, purchase model.Purchase) error {
	s.Lock()
	s.Tracked = append(s.Tracked, purchase)
	fn := s.TrackFn
	s.Unlock()
	if fn != nil {
		return fn(ctx, purchase)
	}
	return nil
}
