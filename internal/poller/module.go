package poller

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
)

// Module provides Poller configured from application settings.
var Module = fx.Provide(newFromConfig)

func newFromConfig(cfg *config.Config, logger *slog.Logger) *Poller {
	return New(cfg.PollInterval, cfg.PollMaxAttempts, logger)
}
