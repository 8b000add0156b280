package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
	"github.com/polkiloo/vpndash/internal/domain/repository"
)

// Module provides the plan cache. Without REDIS_ADDR a no-op cache is used.
var Module = fx.Provide(newPlanCache)

type cacheParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPlanCache(p cacheParams) repository.PlanCache {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("plan cache disabled")
		return NoopPlanCache{}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
		DB:       p.Config.RedisDB,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis is not reachable, plan cache will miss", slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})

	return NewPlanCache(rdb, p.Config.PlanCacheTTL)
}
