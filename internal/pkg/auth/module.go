package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newInspector),
	fx.Provide(newStateSigner),
)

type authParams struct {
	fx.In

	Config *config.Config
}

func newInspector(p authParams) *Inspector {
	return NewInspector(p.Config.SupabaseJWTSecret)
}

func newStateSigner(p authParams) *StateSigner {
	return NewStateSigner(p.Config.StateSecret, Options{})
}
