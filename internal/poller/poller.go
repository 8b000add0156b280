// Package poller implements bounded fixed-interval polling of asynchronous
// provisioning.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

const (
	defaultInterval    = 2 * time.Second
	defaultMaxAttempts = 15
)

// CheckFunc performs one status check.
type CheckFunc func(ctx context.Context) (model.Provisioning, error)

// Attempt is reported after every successful check.
type Attempt struct {
	Number      int
	Observation model.Provisioning
}

// Outcome is the result of a polling run.
type Outcome struct {
	Last     model.Provisioning
	Attempts int
	TimedOut bool
}

// Poller repeats a check at a fixed interval until a terminal status is
// observed or the attempt ceiling is reached.
type Poller struct {
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// New constructs Poller. Non-positive settings fall back to defaults.
func New(interval time.Duration, maxAttempts int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{interval: interval, maxAttempts: maxAttempts, logger: logger}
}

// MaxAttempts returns the attempt ceiling.
func (p *Poller) MaxAttempts() int { return p.maxAttempts }

// Run polls check. The first check happens immediately. onAttempt may be nil.
//
// A check error stops the loop and is returned. When the ceiling is reached
// the outcome is marked TimedOut and ErrPollTimeout is returned.
func (p *Poller) Run(ctx context.Context, check CheckFunc, onAttempt func(Attempt)) (Outcome, error) {
	var outcome Outcome

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		obs, err := check(ctx)
		outcome.Attempts++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return outcome, ctxErr
			}
			p.logger.ErrorContext(ctx, "poll attempt failed",
				slog.String("order_id", outcome.Last.OrderID),
				slog.Int("attempt", outcome.Attempts),
				slog.Any("error", err),
			)
			return outcome, fmt.Errorf("poll attempt %d: %w", outcome.Attempts, err)
		}

		outcome.Last = obs
		p.logger.DebugContext(ctx, "poll attempt",
			slog.String("order_id", obs.OrderID),
			slog.Int("attempt", outcome.Attempts),
			slog.String("status", string(obs.Status)),
		)
		if onAttempt != nil {
			onAttempt(Attempt{Number: outcome.Attempts, Observation: obs})
		}

		if obs.Status.IsTerminal() {
			return outcome, nil
		}
		if outcome.Attempts >= p.maxAttempts {
			outcome.TimedOut = true
			p.logger.WarnContext(ctx, "polling gave up",
				slog.String("order_id", obs.OrderID),
				slog.Int("attempts", outcome.Attempts),
			)
			return outcome, domainErrors.ErrPollTimeout
		}

		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		case <-ticker.C:
		}
	}
}
