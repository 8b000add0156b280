package backend

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
)

// Module exposes backend client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.APIBase, p.Config.RequestTimeout, p.Logger)
}
