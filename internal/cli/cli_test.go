package cli

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

type clientStub struct {
	receipt  *model.PurchaseReceipt
	statuses []model.Provisioning
	products []*model.Product
	orders   []model.Order

	statusCalls  int
	productCalls int
	token        string
}

func (c *clientStub) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if password != "pw" {
		return nil, domainErrors.ErrInvalidCredentials
	}
	return &model.Session{AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (c *clientStub) Plans(ctx context.Context) ([]model.Plan, error) {
	return []model.Plan{{ID: "basic", Name: "Basic", Price: 4.99, Currency: "usd", DurationDays: 30}}, nil
}

func (c *clientStub) Purchase(ctx context.Context, token string, req model.PurchaseRequest) (*model.PurchaseReceipt, error) {
	c.token = token
	return c.receipt, nil
}

func (c *clientStub) PurchaseStatus(ctx context.Context, token, orderID string) (*model.Provisioning, error) {
	i := c.statusCalls
	c.statusCalls++
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	obs := c.statuses[i]
	obs.OrderID = orderID
	return &obs, nil
}

func (c *clientStub) ProductSubscription(ctx context.Context, token, productID string) (*model.Product, error) {
	i := c.productCalls
	c.productCalls++
	if i >= len(c.products) || c.products[i] == nil {
		return nil, domainErrors.ErrNotFound
	}
	return c.products[i], nil
}

func (c *clientStub) Orders(ctx context.Context, token string) ([]model.Order, error) {
	if token != "a1" {
		return nil, domainErrors.ErrUnauthorized
	}
	return c.orders, nil
}

func execute(t *testing.T, stub *clientStub, args ...string) (string, error) {
	t.Helper()
	t.Setenv(TokenEnv, "")
	cmd := NewRootCommand(func(string, time.Duration, *slog.Logger) (Client, error) { return stub, nil })
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--interval", "1ms"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCommand(nil)
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"login", "plans", "buy", "status", "orders"} {
		assert.True(t, names[name], "missing command %s", name)
	}
	for _, flag := range []string{"api-base", "token", "interval", "attempts"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestLoginPrintsTokens(t *testing.T) {
	out, err := execute(t, &clientStub{}, "login", "--email", "u@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "access_token=a1")
	assert.Contains(t, out, "refresh_token=r1")

	_, err = execute(t, &clientStub{}, "login", "--email", "u@example.com", "--password", "bad")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidCredentials)
}

func TestPlans(t *testing.T) {
	out, err := execute(t, &clientStub{}, "plans")
	require.NoError(t, err)
	assert.Contains(t, out, "basic")
	assert.Contains(t, out, "4.99 usd")
}

func TestBuyRequiresToken(t *testing.T) {
	_, err := execute(t, &clientStub{}, "buy", "--plan", "basic")
	assert.ErrorIs(t, err, errTokenRequired)
}

func TestBuyImmediateLink(t *testing.T) {
	stub := &clientStub{receipt: &model.PurchaseReceipt{SubscriptionURL: "vless://now"}}
	out, err := execute(t, stub, "--token", "a1", "buy", "--plan", "basic")
	require.NoError(t, err)
	assert.Contains(t, out, "subscription: vless://now")
	assert.Equal(t, "a1", stub.token)
	assert.Zero(t, stub.statusCalls)
}

func TestBuyPollsOrderThenProduct(t *testing.T) {
	stub := &clientStub{
		receipt: &model.PurchaseReceipt{OrderID: "o1"},
		statuses: []model.Provisioning{
			{Status: model.OrderStatusPending},
			{Status: model.OrderStatusCompleted, ProductID: "p1"},
		},
		products: []*model.Product{nil, {ID: "p1", SubscriptionURL: "vless://p1"}},
	}
	out, err := execute(t, stub, "--token", "a1", "buy", "--plan", "basic")
	require.NoError(t, err)
	assert.Contains(t, out, "order o1 submitted")
	assert.Contains(t, out, "attempt 1: pending")
	assert.Contains(t, out, "subscription: vless://p1")
	assert.Equal(t, 2, stub.statusCalls)
	assert.Equal(t, 2, stub.productCalls)
}

func TestBuyTimeoutPrintsHint(t *testing.T) {
	stub := &clientStub{
		receipt:  &model.PurchaseReceipt{OrderID: "o1"},
		statuses: []model.Provisioning{{Status: model.OrderStatusProcessing}},
	}
	out, err := execute(t, stub, "--token", "a1", "--attempts", "3", "buy", "--plan", "basic")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.statusCalls)
	assert.Contains(t, out, "vpnctl status --order o1")
}

func TestBuyFailedOrder(t *testing.T) {
	stub := &clientStub{
		receipt:  &model.PurchaseReceipt{OrderID: "o1"},
		statuses: []model.Provisioning{{Status: model.OrderStatusFailed}},
	}
	_, err := execute(t, stub, "--token", "a1", "buy", "--plan", "basic")
	assert.ErrorContains(t, err, "order o1 failed")
}

func TestStatusAndOrders(t *testing.T) {
	stub := &clientStub{
		statuses: []model.Provisioning{{Status: model.OrderStatusCompleted, SubscriptionURL: "vless://o9"}},
		orders:   []model.Order{{ID: "o9", PlanID: "basic", Status: model.OrderStatusCompleted, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}},
	}
	out, err := execute(t, stub, "--token", "a1", "status", "--order", "o9")
	require.NoError(t, err)
	assert.Contains(t, out, "order o9: completed")
	assert.Contains(t, out, "vless://o9")

	out, err = execute(t, stub, "--token", "a1", "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-01 10:00")

	_, err = execute(t, stub, "--token", "stale", "orders")
	assert.ErrorContains(t, err, "sign in again")
}
