package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/poller"
)

func newBuyCommand(opts *options) *cobra.Command {
	var req model.PurchaseRequest
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a plan and wait for the subscription link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			if strings.TrimSpace(req.PlanID) == "" {
				return fmt.Errorf("--plan must not be empty")
			}
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			b := buyer{client: client, poller: opts.poller(cmd), token: opts.token, out: cmd.OutOrStdout()}
			return b.run(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.PlanID, "plan", "", "plan id")
	cmd.Flags().IntVar(&req.Months, "months", 0, "number of months")
	cmd.Flags().StringVar(&req.PromoCode, "promo", "", "promo code")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

type buyer struct {
	client Client
	poller *poller.Poller
	token  string
	out    io.Writer
}

func (b buyer) run(ctx context.Context, req model.PurchaseRequest) error {
	receipt, err := b.client.Purchase(ctx, b.token, req)
	if err != nil {
		return fmt.Errorf("purchase: %w", err)
	}
	if receipt.SubscriptionURL != "" {
		fmt.Fprintf(b.out, "subscription: %s\n", receipt.SubscriptionURL)
		return nil
	}
	if receipt.OrderID == "" {
		return fmt.Errorf("purchase: backend returned neither order nor link")
	}
	fmt.Fprintf(b.out, "order %s submitted\n", receipt.OrderID)

	outcome, err := b.poller.Run(ctx, poller.OrderCheck(b.client, b.token, receipt.OrderID), b.progress)
	if err != nil {
		return b.giveUp(receipt.OrderID, err)
	}

	last := outcome.Last
	switch {
	case last.Status == model.OrderStatusFailed:
		return fmt.Errorf("order %s failed", receipt.OrderID)
	case last.SubscriptionURL != "":
		fmt.Fprintf(b.out, "subscription: %s\n", last.SubscriptionURL)
		return nil
	case last.ProductID == "":
		fmt.Fprintf(b.out, "order %s completed without a subscription link\n", receipt.OrderID)
		return nil
	}

	outcome, err = b.poller.Run(ctx, poller.ProductCheck(b.client, b.token, receipt.OrderID, last.ProductID), b.progress)
	if err != nil {
		return b.giveUp(receipt.OrderID, err)
	}
	fmt.Fprintf(b.out, "subscription: %s\n", outcome.Last.SubscriptionURL)
	return nil
}

func (b buyer) progress(a poller.Attempt) {
	fmt.Fprintf(b.out, "attempt %d: %s\n", a.Number, a.Observation.Status)
}

// giveUp turns a timeout into a hint; the order itself is still alive.
func (b buyer) giveUp(orderID string, err error) error {
	if errors.Is(err, domainErrors.ErrPollTimeout) {
		fmt.Fprintf(b.out, "order %s is still processing, check later with: vpnctl status --order %s\n", orderID, orderID)
		return nil
	}
	return fmt.Errorf("order %s: %w", orderID, err)
}
