package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/adapter/backend"
	"github.com/polkiloo/vpndash/internal/adapter/stripe"
	"github.com/polkiloo/vpndash/internal/adapter/supabase"
	"github.com/polkiloo/vpndash/internal/adapter/turnstile"
	"github.com/polkiloo/vpndash/internal/app"
	"github.com/polkiloo/vpndash/internal/cache/redis"
	"github.com/polkiloo/vpndash/internal/config"
	"github.com/polkiloo/vpndash/internal/logger"
	"github.com/polkiloo/vpndash/internal/pkg/auth"
	"github.com/polkiloo/vpndash/internal/poller"
	"github.com/polkiloo/vpndash/internal/server/http/router"
	"github.com/polkiloo/vpndash/internal/storage/postgres"
	"github.com/polkiloo/vpndash/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		redis.Module,
		backend.Module,
		supabase.Module,
		turnstile.Module,
		stripe.Module,
		poller.Module,
		usecase.Module,
		fx.Provide(
			func(c *backend.HTTPClient) usecase.AuthBackend { return c },
			func(c *backend.HTTPClient) usecase.PurchaseBackend { return c },
			func(c *backend.HTTPClient) usecase.CatalogBackend { return c },
			func(c *backend.HTTPClient) usecase.AccountBackend { return c },
			func(c *backend.HTTPClient) usecase.SupportBackend { return c },
			func(c *supabase.Client) usecase.OAuthProvider { return c },
			func(v *turnstile.Verifier) usecase.CaptchaVerifier { return v },
			func(i *auth.Inspector) usecase.TokenInspector { return i },
			func(s *auth.StateSigner) usecase.StateSigner { return s },
			func(c *stripe.Checkout) usecase.PaymentGateway { return c },
			func(s *postgres.Storage) app.HealthChecker { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
