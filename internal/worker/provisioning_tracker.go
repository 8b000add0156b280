package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/vpndash/internal/adapter/backend"
	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// TrackingFacade exposes the subset of application functionality required by the tracker.
type TrackingFacade interface {
	PurchasesForTracking(ctx context.Context, limit int) ([]model.Purchase, error)
	TrackPurchase(ctx context.Context, purchase model.Purchase) error
}

// ProvisioningTracker polls the backend for purchases that are still being
// provisioned and advances them in the ledger concurrently.
type ProvisioningTracker struct {
	facade   TrackingFacade
	interval time.Duration
	batch    int
	workers  int
	logger   *slog.Logger

	jobs   chan model.Purchase
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewProvisioningTracker constructs the tracker worker pool.
func NewProvisioningTracker(facade TrackingFacade, interval time.Duration, batch, workers int, logger *slog.Logger) *ProvisioningTracker {
	if workers <= 0 {
		workers = 1
	}
	if batch <= 0 {
		batch = 1
	}
	return &ProvisioningTracker{
		facade:   facade,
		interval: interval,
		batch:    batch,
		workers:  workers,
		logger:   logger,
		jobs:     make(chan model.Purchase, batch*workers),
	}
}

// Start launches background tracking.
func (t *ProvisioningTracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	for i := 0; i < t.workers; i++ {
		t.wg.Add(1)
		go t.worker(runCtx)
	}

	t.wg.Add(1)
	go t.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (t *ProvisioningTracker) Stop() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()

	t.wg.Wait()
}

func (t *ProvisioningTracker) dispatch(ctx context.Context) {
	defer t.wg.Done()
	defer close(t.jobs)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fetchAndDispatch(ctx)
		}
	}
}

func (t *ProvisioningTracker) fetchAndDispatch(ctx context.Context) {
	purchases, err := t.facade.PurchasesForTracking(ctx, t.batch)
	if err != nil {
		t.logger.Error("fetch purchases for tracking failed", slog.String("error", err.Error()))
		return
	}
	for _, purchase := range purchases {
		select {
		case <-ctx.Done():
			return
		case t.jobs <- purchase:
		}
	}
}

func (t *ProvisioningTracker) worker(ctx context.Context) {
	defer t.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case purchase, ok := <-t.jobs:
			if !ok {
				return
			}
			t.handlePurchase(ctx, purchase)
		}
	}
}

func (t *ProvisioningTracker) handlePurchase(ctx context.Context, purchase model.Purchase) {
	err := t.facade.TrackPurchase(ctx, purchase)
	if err == nil {
		return
	}

	var limited backend.TooManyRequestsError
	switch {
	case errors.As(err, &limited):
		t.logger.Warn("backend rate limited", slog.Duration("retry_after", limited.RetryAfter))
		sleep(ctx, limited.RetryAfter)
	case ctx.Err() != nil:
	case errors.Is(err, domainErrors.ErrNotFound):
		t.logger.Debug("tracked purchase disappeared", slog.String("order", purchase.OrderID))
	default:
		t.logger.Warn("track purchase failed", slog.String("order", purchase.OrderID), slog.String("error", err.Error()))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
