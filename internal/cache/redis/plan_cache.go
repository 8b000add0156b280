// Package redis keeps the plan catalog in Redis between backend fetches.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

const plansKey = "vpndash:plans"

type commander interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// PlanCache implements repository.PlanCache over Redis.
type PlanCache struct {
	rdb commander
	ttl time.Duration
}

// NewPlanCache creates PlanCache with entries expiring after ttl.
func NewPlanCache(rdb commander, ttl time.Duration) *PlanCache {
	return &PlanCache{rdb: rdb, ttl: ttl}
}

// Get returns cached plans. The boolean is false on a miss.
func (c *PlanCache) Get(ctx context.Context) ([]model.Plan, bool, error) {
	raw, err := c.rdb.Get(ctx, plansKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get plans: %w", err)
	}

	var plans []model.Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, false, fmt.Errorf("decode cached plans: %w", err)
	}
	return plans, true, nil
}

// Set stores plans.
func (c *PlanCache) Set(ctx context.Context, plans []model.Plan) error {
	raw, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, plansKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set plans: %w", err)
	}
	return nil
}

// Invalidate drops cached plans.
func (c *PlanCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, plansKey).Err(); err != nil {
		return fmt.Errorf("redis del plans: %w", err)
	}
	return nil
}

// NoopPlanCache is used when Redis is not configured. Every Get misses.
type NoopPlanCache struct{}

func (NoopPlanCache) Get(context.Context) ([]model.Plan, bool, error) { return nil, false, nil }
func (NoopPlanCache) Set(context.Context, []model.Plan) error         { return nil }
func (NoopPlanCache) Invalidate(context.Context) error                { return nil }
