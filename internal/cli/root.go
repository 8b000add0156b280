// Package cli implements vpnctl, an operator tool talking to the dashboard backend.
package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/polkiloo/vpndash/internal/adapter/backend"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/poller"
)

// TokenEnv is read when --token is not given.
const TokenEnv = "VPNCTL_TOKEN"

// Client is the subset of the backend API used by vpnctl.
type Client interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Plans(ctx context.Context) ([]model.Plan, error)
	Purchase(ctx context.Context, token string, req model.PurchaseRequest) (*model.PurchaseReceipt, error)
	PurchaseStatus(ctx context.Context, token, orderID string) (*model.Provisioning, error)
	ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error)
	Orders(ctx context.Context, token string) ([]model.Order, error)
}

// ClientFactory builds a Client for the API base URL.
type ClientFactory func(apiBase string, timeout time.Duration, logger *slog.Logger) (Client, error)

func defaultClientFactory(apiBase string, timeout time.Duration, logger *slog.Logger) (Client, error) {
	client, err := backend.NewHTTPClient(apiBase, timeout, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

type options struct {
	apiBase  string
	token    string
	interval time.Duration
	attempts int
	timeout  time.Duration
	verbose  bool

	newClient ClientFactory
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *options) client(cmd *cobra.Command) (Client, error) {
	return o.newClient(o.apiBase, o.timeout, o.logger(cmd))
}

func (o *options) poller(cmd *cobra.Command) *poller.Poller {
	return poller.New(o.interval, o.attempts, o.logger(cmd))
}

// NewRootCommand assembles vpnctl. A nil factory uses the HTTP backend client.
func NewRootCommand(factory ClientFactory) *cobra.Command {
	if factory == nil {
		factory = defaultClientFactory
	}
	opts := &options{newClient: factory}

	root := &cobra.Command{
		Use:   "vpnctl",
		Short: "Operate VPN subscriptions from the command line",
		Long: `vpnctl talks to the VPN dashboard backend directly.

It can sign in, list plans and orders, buy a plan and follow its
provisioning with the same bounded polling the dashboard uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiBase, "api-base", "http://localhost:8000/api", "backend API base URL")
	flags.StringVar(&opts.token, "token", os.Getenv(TokenEnv), "access token (default $"+TokenEnv+")")
	flags.DurationVar(&opts.interval, "interval", 2*time.Second, "delay between status checks")
	flags.IntVar(&opts.attempts, "attempts", 15, "maximum number of status checks")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every status check")

	root.AddCommand(
		newLoginCommand(opts),
		newPlansCommand(opts),
		newBuyCommand(opts),
		newStatusCommand(opts),
		newOrdersCommand(opts),
	)
	return root
}
