package repository

import (
	"context"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// PlanCache stores the plan catalog between backend fetches.
type PlanCache interface {
	Get(ctx context.Context) ([]model.Plan, bool, error)
	Set(ctx context.Context, plans []model.Plan) error
	Invalidate(ctx context.Context) error
}
