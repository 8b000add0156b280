package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/domain/repository"
	"github.com/polkiloo/vpndash/internal/poller"
)

const errSessionUnavailable = "session not available; refresh manually"

// rateLimited is implemented by backend errors carrying a retry delay.
type rateLimited interface {
	error
	Delay() time.Duration
}

// PurchaseUseCase starts purchases and follows their provisioning.
type PurchaseUseCase struct {
	backend   PurchaseBackend
	purchases repository.PurchaseRepository
	poller    *poller.Poller
	vault     *TokenVault
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	inline map[string]int
}

// NewPurchaseUseCase constructs PurchaseUseCase.
func NewPurchaseUseCase(backend PurchaseBackend, purchases repository.PurchaseRepository, p *poller.Poller, vault *TokenVault, logger *slog.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{
		backend:   backend,
		purchases: purchases,
		poller:    p,
		vault:     vault,
		logger:    logger,
		now:       time.Now,
		inline:    make(map[string]int),
	}
}

// Purchase submits the purchase. A receipt carrying a subscription link is
// settled right away. Otherwise the order is handed to background tracking.
func (u *PurchaseUseCase) Purchase(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error) {
	purchase, _, err := u.start(ctx, owner, req)
	if err != nil {
		return model.PurchaseResult{}, err
	}
	return purchase.Result(), nil
}

// PurchaseAndWait submits the purchase and polls inline until the
// subscription link is available, the order fails or attempts run out.
func (u *PurchaseUseCase) PurchaseAndWait(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (model.PurchaseResult, error) {
	purchase, recorded, err := u.start(ctx, owner, req)
	if err != nil {
		return model.PurchaseResult{}, err
	}
	if purchase.Tracking != model.TrackingActive {
		return purchase.Result(), nil
	}
	return u.wait(ctx, owner.Token, purchase, recorded, nil)
}

// Status returns the last known state of a purchase owned by userID.
func (u *PurchaseUseCase) Status(ctx context.Context, userID, orderID string) (model.PurchaseResult, error) {
	purchase, err := u.owned(ctx, userID, orderID)
	if err != nil {
		return model.PurchaseResult{}, err
	}
	return purchase.Result(), nil
}

// History lists purchases of userID, newest first.
func (u *PurchaseUseCase) History(ctx context.Context, userID string) ([]model.PurchaseResult, error) {
	purchases, err := u.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := make([]model.PurchaseResult, 0, len(purchases))
	for i := range purchases {
		results = append(results, purchases[i].Result())
	}
	return results, nil
}

// Refresh performs one status check on behalf of the user. A purchase that is
// still in flight goes back to background tracking with a fresh attempt budget.
func (u *PurchaseUseCase) Refresh(ctx context.Context, owner model.Owner, orderID string) (model.PurchaseResult, error) {
	purchase, err := u.owned(ctx, owner.UserID, orderID)
	if err != nil {
		return model.PurchaseResult{}, err
	}
	if purchase.Tracking == model.TrackingSettled {
		return purchase.Result(), nil
	}

	obs, err := u.observe(ctx, owner.Token, purchase)
	if err != nil {
		return purchase.Result(), err
	}
	u.apply(purchase, obs)
	purchase.LastError = ""

	if u.finished(purchase) {
		u.settle(purchase)
	} else {
		purchase.Tracking = model.TrackingActive
		purchase.Attempts = 0
		u.vault.Put(purchase.OrderID, owner.Token)
	}

	if err := u.save(ctx, purchase); err != nil {
		return model.PurchaseResult{}, err
	}
	return purchase.Result(), nil
}

// Watch polls the purchase and reports every observation to fn.
func (u *PurchaseUseCase) Watch(ctx context.Context, owner model.Owner, orderID string, fn func(poller.Attempt)) (model.PurchaseResult, error) {
	purchase, err := u.owned(ctx, owner.UserID, orderID)
	if err != nil {
		return model.PurchaseResult{}, err
	}
	if purchase.Tracking == model.TrackingSettled {
		if fn != nil {
			fn(poller.Attempt{Observation: model.Provisioning{
				OrderID:         purchase.OrderID,
				Status:          purchase.Status,
				ProductID:       purchase.ProductID,
				SubscriptionURL: purchase.SubscriptionURL,
			}})
		}
		return purchase.Result(), nil
	}

	if purchase.Tracking == model.TrackingStalled {
		purchase.Attempts = 0
	}
	purchase.Tracking = model.TrackingActive
	u.vault.Put(purchase.OrderID, owner.Token)
	return u.wait(ctx, owner.Token, purchase, true, fn)
}

// PurchasesForTracking returns purchases the background tracker should check.
func (u *PurchaseUseCase) PurchasesForTracking(ctx context.Context, limit int) ([]model.Purchase, error) {
	return u.purchases.SelectBatchForTracking(ctx, limit)
}

// TrackPurchase runs a single background check of a claimed purchase. The
// claimed copy may be stale, so the current ledger row is checked first.
// Purchases polled inline by a request are skipped.
func (u *PurchaseUseCase) TrackPurchase(ctx context.Context, claimed model.Purchase) error {
	if u.polledInline(claimed.OrderID) {
		return nil
	}
	current, err := u.purchases.GetByOrderID(ctx, claimed.OrderID)
	if err != nil {
		return err
	}
	if current.Tracking != model.TrackingActive {
		return nil
	}
	purchase := *current

	token, ok := u.vault.Get(purchase.OrderID)
	if !ok {
		purchase.Tracking = model.TrackingStalled
		purchase.LastError = errSessionUnavailable
		return u.save(ctx, &purchase)
	}

	obs, err := u.observe(ctx, token, &purchase)
	if err != nil {
		var limited rateLimited
		if errors.As(err, &limited) || ctx.Err() != nil {
			return err
		}
		purchase.Attempts++
		purchase.LastError = err.Error()
		if errors.Is(err, domainErrors.ErrUnauthorized) || purchase.Attempts >= u.poller.MaxAttempts() {
			purchase.Tracking = model.TrackingStalled
			u.vault.Delete(purchase.OrderID)
		}
		if saveErr := u.save(ctx, &purchase); saveErr != nil {
			return errors.Join(err, saveErr)
		}
		return err
	}

	purchase.Attempts++
	purchase.LastError = ""
	u.apply(&purchase, obs)

	switch {
	case u.finished(&purchase):
		u.settle(&purchase)
	case purchase.Attempts >= u.poller.MaxAttempts():
		purchase.Tracking = model.TrackingStalled
		purchase.LastError = fmt.Sprintf("provisioning not finished after %d attempts", purchase.Attempts)
		u.vault.Delete(purchase.OrderID)
	}
	return u.save(ctx, &purchase)
}

// start submits the purchase and records it. recorded is false when the
// ledger insert failed; the purchase is still returned.
func (u *PurchaseUseCase) start(ctx context.Context, owner model.Owner, req model.PurchaseRequest) (_ *model.Purchase, recorded bool, _ error) {
	req.PlanID = strings.TrimSpace(req.PlanID)
	if req.PlanID == "" || req.Months < 0 {
		return nil, false, domainErrors.ErrInvalidInput
	}

	receipt, err := u.backend.Purchase(ctx, owner.Token, req)
	if err != nil {
		return nil, false, err
	}

	now := u.now().UTC()
	purchase := &model.Purchase{
		ID:              uuid.NewString(),
		UserID:          owner.UserID,
		OrderID:         receipt.OrderID,
		PlanID:          req.PlanID,
		ProductID:       receipt.ProductID,
		SubscriptionURL: receipt.SubscriptionURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	switch {
	case receipt.SubscriptionURL != "":
		purchase.Status = model.OrderStatusCompleted
		purchase.Tracking = model.TrackingSettled
		if purchase.OrderID == "" {
			purchase.OrderID = purchase.ID
		}
	case receipt.OrderID != "":
		purchase.Status = model.ParseOrderStatus(receipt.Status, false, false)
		purchase.Tracking = model.TrackingActive
		if purchase.Status == model.OrderStatusFailed {
			purchase.Tracking = model.TrackingSettled
		}
	default:
		return nil, false, fmt.Errorf("purchase response has neither subscription link nor order id: %w", domainErrors.ErrUnavailable)
	}

	recorded = u.record(ctx, owner.Token, purchase)

	u.logger.InfoContext(ctx, "purchase submitted",
		slog.String("order_id", purchase.OrderID),
		slog.String("plan_id", purchase.PlanID),
		slog.String("tracking", string(purchase.Tracking)),
		slog.Bool("recorded", recorded),
	)
	return purchase, recorded, nil
}

// record inserts purchase into the ledger. A failed insert is logged and
// the purchase is left out of background tracking.
func (u *PurchaseUseCase) record(ctx context.Context, token string, purchase *model.Purchase) bool {
	if err := u.purchases.Create(ctx, purchase); err != nil {
		u.vault.Delete(purchase.OrderID)
		u.logger.ErrorContext(ctx, "record purchase failed",
			slog.String("order_id", purchase.OrderID),
			slog.String("error", err.Error()),
		)
		return false
	}
	if purchase.Tracking == model.TrackingActive {
		u.vault.Put(purchase.OrderID, token)
	}
	return true
}

// wait runs the order stage and, when the completed order carries only a
// product id, the product stage. The outcome is persisted, or inserted when
// the purchase never made it into the ledger.
func (u *PurchaseUseCase) wait(ctx context.Context, token string, purchase *model.Purchase, recorded bool, fn func(poller.Attempt)) (model.PurchaseResult, error) {
	var (
		outcome poller.Outcome
		err     error
	)

	release := u.pollInline(purchase.OrderID)
	defer release()

	if !purchase.Status.IsTerminal() {
		outcome, err = u.poller.Run(ctx, u.orderCheck(token, purchase.OrderID), fn)
		purchase.Attempts += outcome.Attempts
		if outcome.Last.Status != "" {
			u.apply(purchase, outcome.Last)
		}
	}

	if err == nil && u.awaitingProduct(purchase) {
		productID := purchase.ProductID
		outcome, err = u.poller.Run(ctx, u.productCheck(token, purchase.OrderID, productID), func(a poller.Attempt) {
			if fn != nil {
				a.Observation.Status = purchase.Status
				fn(a)
			}
		})
		purchase.Attempts += outcome.Attempts
		if outcome.Last.SubscriptionURL != "" {
			purchase.SubscriptionURL = outcome.Last.SubscriptionURL
		}
	}

	switch {
	case err == nil:
		purchase.LastError = ""
		u.settle(purchase)
	case ctx.Err() != nil:
		// tracking stays active and the background tracker takes over
		detached := context.WithoutCancel(ctx)
		if !recorded {
			u.record(detached, token, purchase)
		} else if saveErr := u.save(detached, purchase); saveErr != nil {
			u.logger.Error("persist purchase failed", slog.String("order_id", purchase.OrderID), slog.String("error", saveErr.Error()))
		}
		return purchase.Result(), err
	default:
		purchase.Tracking = model.TrackingStalled
		purchase.LastError = err.Error()
		u.vault.Delete(purchase.OrderID)
	}

	if !recorded {
		u.record(ctx, token, purchase)
		return purchase.Result(), err
	}
	if saveErr := u.save(ctx, purchase); saveErr != nil {
		return purchase.Result(), saveErr
	}
	return purchase.Result(), err
}

// pollInline marks orderID as polled by a request until release is called.
func (u *PurchaseUseCase) pollInline(orderID string) (release func()) {
	u.mu.Lock()
	u.inline[orderID]++
	u.mu.Unlock()
	return func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.inline[orderID]--; u.inline[orderID] <= 0 {
			delete(u.inline, orderID)
		}
	}
}

func (u *PurchaseUseCase) polledInline(orderID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inline[orderID] > 0
}

func (u *PurchaseUseCase) orderCheck(token, orderID string) poller.CheckFunc {
	return poller.OrderCheck(u.backend, token, orderID)
}

func (u *PurchaseUseCase) productCheck(token, orderID, productID string) poller.CheckFunc {
	return poller.ProductCheck(u.backend, token, orderID, productID)
}

// observe performs the check matching the current stage of purchase.
func (u *PurchaseUseCase) observe(ctx context.Context, token string, purchase *model.Purchase) (model.Provisioning, error) {
	if u.awaitingProduct(purchase) {
		return u.productCheck(token, purchase.OrderID, purchase.ProductID)(ctx)
	}
	obs, err := u.orderCheck(token, purchase.OrderID)(ctx)
	if err != nil {
		return obs, err
	}
	if obs.Status == model.OrderStatusCompleted && obs.SubscriptionURL == "" && obs.ProductID != "" {
		product, err := u.productCheck(token, purchase.OrderID, obs.ProductID)(ctx)
		if err == nil {
			obs.SubscriptionURL = product.SubscriptionURL
		}
	}
	return obs, nil
}

func (u *PurchaseUseCase) apply(purchase *model.Purchase, obs model.Provisioning) {
	if u.awaitingProduct(purchase) {
		if obs.SubscriptionURL != "" {
			purchase.SubscriptionURL = obs.SubscriptionURL
		}
		return
	}
	purchase.Apply(obs)
}

func (u *PurchaseUseCase) awaitingProduct(purchase *model.Purchase) bool {
	return purchase.Status == model.OrderStatusCompleted && purchase.SubscriptionURL == "" && purchase.ProductID != ""
}

// finished reports whether nothing more can be learned by polling.
func (u *PurchaseUseCase) finished(purchase *model.Purchase) bool {
	switch purchase.Status {
	case model.OrderStatusFailed:
		return true
	case model.OrderStatusCompleted:
		return !u.awaitingProduct(purchase)
	default:
		return false
	}
}

func (u *PurchaseUseCase) settle(purchase *model.Purchase) {
	purchase.Tracking = model.TrackingSettled
	u.vault.Delete(purchase.OrderID)
}

// save writes purchase back. When the row was settled concurrently the
// settled row wins and is loaded into purchase.
func (u *PurchaseUseCase) save(ctx context.Context, purchase *model.Purchase) error {
	purchase.UpdatedAt = u.now().UTC()
	err := u.purchases.Update(ctx, purchase)
	if errors.Is(err, domainErrors.ErrConflict) {
		current, getErr := u.purchases.GetByOrderID(ctx, purchase.OrderID)
		if getErr != nil {
			return fmt.Errorf("reload purchase %s: %w", purchase.OrderID, getErr)
		}
		u.logger.DebugContext(ctx, "purchase already settled", slog.String("order_id", purchase.OrderID))
		u.vault.Delete(purchase.OrderID)
		*purchase = *current
		return nil
	}
	if err != nil {
		return fmt.Errorf("update purchase %s: %w", purchase.OrderID, err)
	}
	return nil
}

func (u *PurchaseUseCase) owned(ctx context.Context, userID, orderID string) (*model.Purchase, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	purchase, err := u.purchases.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return purchase, nil
}
