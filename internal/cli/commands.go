package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
)

var errTokenRequired = errors.New("access token required: pass --token or set " + TokenEnv)

func (o *options) requireToken() error {
	if o.token == "" {
		return errTokenRequired
	}
	return nil
}

func newLoginCommand(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			session, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "access_token=%s\n", session.AccessToken)
			if session.RefreshToken != "" {
				fmt.Fprintf(out, "refresh_token=%s\n", session.RefreshToken)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "export %s to reuse the session\n", TokenEnv)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newPlansCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List purchasable plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			plans, err := client.Plans(cmd.Context())
			if err != nil {
				return fmt.Errorf("plans: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tDAYS")
			for _, p := range plans {
				fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%d\n", p.ID, p.Name, p.Price, p.Currency, p.DurationDays)
			}
			return w.Flush()
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	var orderID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check provisioning status of an order once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			obs, err := client.PurchaseStatus(cmd.Context(), opts.token, orderID)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "order %s: %s\n", orderID, obs.Status)
			if obs.SubscriptionURL != "" {
				fmt.Fprintf(out, "subscription: %s\n", obs.SubscriptionURL)
			} else if obs.ProductID != "" {
				fmt.Fprintf(out, "product: %s\n", obs.ProductID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&orderID, "order", "", "order id")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func newOrdersCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders of the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			orders, err := client.Orders(cmd.Context(), opts.token)
			if errors.Is(err, domainErrors.ErrUnauthorized) {
				return fmt.Errorf("orders: token rejected, sign in again")
			}
			if err != nil {
				return fmt.Errorf("orders: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLAN\tSTATUS\tCREATED")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.ID, o.PlanID, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
