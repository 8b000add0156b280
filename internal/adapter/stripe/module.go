package stripe

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
)

// Module provides Stripe checkout adapter.
var Module = fx.Provide(newCheckout)

func newCheckout(cfg *config.Config, logger *slog.Logger) *Checkout {
	return NewCheckout(cfg.StripeSecretKey, cfg.PublicURL, logger)
}
