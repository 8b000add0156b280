package repository

import (
	"context"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// PurchaseRepository persists local purchase tracking records.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	GetByOrderID(ctx context.Context, orderID string) (*model.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]model.Purchase, error)
	SelectBatchForTracking(ctx context.Context, limit int) ([]model.Purchase, error)
	Update(ctx context.Context, purchase *model.Purchase) error
}
