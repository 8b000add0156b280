package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

// stopGrace bounds shutdown when the hooks set no deadline of their own.
const stopGrace = 30 * time.Second

func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		if sig.ExitCode != 0 {
			defer func() { _ = stop(app) }()
			return fmt.Errorf("shutdown requested with exit code %d", sig.ExitCode)
		}
	}

	return stop(app)
}

func stop(app *fx.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopGrace)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}
