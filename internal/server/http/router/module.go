package router

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
	"github.com/polkiloo/vpndash/internal/server/http/handlers"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
	"github.com/polkiloo/vpndash/internal/server/http/ws"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(
		middleware.NewSessionCookies,
		newStatusStream,
		Setup,
	),
)

func newStatusStream(facade handlers.DashboardFacade, cfg *config.Config, logger *slog.Logger) *ws.StatusStream {
	return ws.NewStatusStream(facade, cfg.AllowedOrigins, logger)
}
