package usecase

import (
	"context"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/domain/repository"
)

// CatalogUseCase serves the plan catalog through the plan cache.
type CatalogUseCase struct {
	backend CatalogBackend
	cache   repository.PlanCache
	logger  *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(backend CatalogBackend, cache repository.PlanCache, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{backend: backend, cache: cache, logger: logger}
}

// Plans returns available plans. Cache failures fall through to the backend.
func (u *CatalogUseCase) Plans(ctx context.Context) ([]model.Plan, error) {
	plans, ok, err := u.cache.Get(ctx)
	if err != nil {
		u.logger.WarnContext(ctx, "plan cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		return plans, nil
	}

	plans, err = u.backend.Plans(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Set(ctx, plans); err != nil {
		u.logger.WarnContext(ctx, "plan cache write failed", slog.String("error", err.Error()))
	}
	return plans, nil
}

// Plan returns a single plan by id.
func (u *CatalogUseCase) Plan(ctx context.Context, id string) (*model.Plan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	plans, err := u.Plans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ID == id {
			return &plans[i], nil
		}
	}
	return nil, domainErrors.ErrNotFound
}
