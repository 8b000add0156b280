package turnstile

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
)

// Module provides the captcha verifier.
var Module = fx.Provide(newVerifier)

func newVerifier(cfg *config.Config, logger *slog.Logger) *Verifier {
	return NewVerifier(cfg.TurnstileSecret, "", cfg.RequestTimeout, logger)
}
