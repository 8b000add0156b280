package supabase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
)

// Module exposes the Supabase Auth client.
var Module = fx.Provide(newClient)

func newClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	return NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.RequestTimeout, logger)
}
