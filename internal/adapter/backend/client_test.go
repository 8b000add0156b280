package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL+"/api", time.Second, testLogger())
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	_, err := NewHTTPClient("://bad-url", time.Second, testLogger())
	assert.Error(t, err)
	_, err = NewHTTPClient("/relative", time.Second, testLogger())
	assert.Error(t, err)
}

func TestLoginSendsCredentialsAndParsesSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])
		_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","expires_at":1700000000}`))
	})

	session, err := client.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a", session.AccessToken)
	assert.Equal(t, "r", session.RefreshToken)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), session.ExpiresAt)
}

func TestRefreshKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/refresh", r.URL.Path)
		_, _ = w.Write([]byte(`{"access_token":"fresh","expires_in":3600}`))
	})

	before := time.Now()
	session, err := client.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", session.AccessToken)
	assert.Equal(t, "old-refresh", session.RefreshToken)
	assert.True(t, session.ExpiresAt.After(before.Add(59*time.Minute)))
}

func TestMeSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"email":"u@example.com","name":"U","balance":12.5}`))
	})

	profile, err := client.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "42", profile.ID)
	assert.Equal(t, 12.5, profile.Balance)
}

func TestPurchaseReturnsReceipt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/subscriptions/purchase", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "basic", body["plan_id"])
		_, _ = w.Write([]byte(`{"order_id":"ord-1","status":"pending"}`))
	})

	receipt, err := client.Purchase(context.Background(), "tok", model.PurchaseRequest{PlanID: "basic"})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", receipt.OrderID)
	assert.Empty(t, receipt.SubscriptionURL)
}

func TestPurchaseStatusMapsFlags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.OrderStatus
	}{
		{name: "completed flag", body: `{"status":"whatever","is_completed":true,"product_id":7}`, want: model.OrderStatusCompleted},
		{name: "failed flag", body: `{"status":"completed","is_failed":true}`, want: model.OrderStatusFailed},
		{name: "pending", body: `{"status":"pending"}`, want: model.OrderStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/orders/ord-1/status", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})
			status, err := client.PurchaseStatus(context.Background(), "tok", "ord-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "ord-1", status.OrderID)
		})
	}
}

func TestProductSubscriptionNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not generated"}`))
	})

	_, err := client.ProductSubscription(context.Background(), "tok", "7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrNotFound))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "not generated", statusErr.Message)
}

func TestProductSubscriptionParsesTimes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"subscription_url":"https://sub/1","buy_time":"2024-01-02T03:04:05Z","end_time":1735689600}`))
	})

	product, err := client.ProductSubscription(context.Background(), "tok", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", product.ID)
	assert.Equal(t, "https://sub/1", product.SubscriptionURL)
	assert.Equal(t, 2024, product.BuyTime.Year())
	assert.Equal(t, time.Unix(1735689600, 0).UTC(), product.EndTime)
}

func TestListEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plans":
			_, _ = w.Write([]byte(`[{"id":"basic","name":"Basic","price":5}]`))
		case "/api/orders":
			_, _ = w.Write([]byte(`[{"id":1,"status":"completed","created_at":"2024-01-01T00:00:00Z"}]`))
		case "/api/products":
			_, _ = w.Write([]byte(`[{"product_id":3,"name":"VPN"}]`))
		case "/api/tickets":
			_, _ = w.Write([]byte(`[{"id":"t1","subject":"help","messages":[{"author":"me","body":"hi"}]}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	plans, err := client.Plans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Basic", plans[0].Name)

	orders, err := client.Orders(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderStatusCompleted, orders[0].Status)

	products, err := client.Products(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "3", products[0].ID)

	tickets, err := client.Tickets(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Len(t, tickets[0].Messages, 1)
	assert.Equal(t, "hi", tickets[0].Messages[0].Body)
}

func TestReplyTicketPostsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tickets/t1/messages", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "thanks", body["body"])
		_, _ = w.Write([]byte(`{"id":"t1","status":"open"}`))
	})

	ticket, err := client.ReplyTicket(context.Background(), "tok", "t1", "thanks")
	require.NoError(t, err)
	assert.Equal(t, "open", ticket.Status)
}

func TestIDsAreEscapedIntoASingleSegment(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"id":"x"}`))
	})
	ctx := context.Background()

	_, err := client.ProductSubscription(ctx, "tok", "../subscription")
	require.NoError(t, err)
	_, err = client.Order(ctx, "tok", "a b?c")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/products/..%2Fsubscription/subscription",
		"/api/orders/a%20b%3Fc",
	}, seen)
}

func TestDotSegmentIDsAreRejected(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	ctx := context.Background()

	for _, id := range []string{"", ".", ".."} {
		_, err := client.ProductSubscription(ctx, "tok", id)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidInput, "product %q", id)
		_, err = client.PurchaseStatus(ctx, "tok", id)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidInput, "order %q", id)
		_, err = client.Ticket(ctx, "tok", id)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidInput, "ticket %q", id)
		_, err = client.ReplyTicket(ctx, "tok", id, "hi")
		assert.ErrorIs(t, err, domainErrors.ErrInvalidInput, "reply %q", id)
	}
	assert.Zero(t, calls)
}

func TestStatusErrorsMapToDomain(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{code: http.StatusUnauthorized, want: domainErrors.ErrUnauthorized},
		{code: http.StatusForbidden, want: domainErrors.ErrForbidden},
		{code: http.StatusUnprocessableEntity, want: domainErrors.ErrInvalidInput},
		{code: http.StatusBadGateway, want: domainErrors.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			})
			_, err := client.Orders(context.Background(), "tok")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTooManyRequests(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.PurchaseStatus(context.Background(), "tok", "1")
	var tm TooManyRequestsError
	require.True(t, errors.As(err, &tm))
	assert.Equal(t, 3*time.Second, tm.RetryAfter)
}

func TestNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewHTTPClient(url, time.Second, testLogger())
	require.NoError(t, err)
	_, err = client.Plans(context.Background())
	assert.ErrorIs(t, err, domainErrors.ErrUnavailable)
}

func TestCancelledContextIsReturned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Plans(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServerErrorsAreLoggedAtErrorLevel(t *testing.T) {
	called := make(chan struct{}, 1)
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelError {
			select {
			case called <- struct{}{}:
			default:
			}
		}
		return a
	}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, time.Second, slog.New(handler))
	require.NoError(t, err)
	_, err = client.Me(context.Background(), "tok")
	require.Error(t, err)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected error log to be written")
	}
}

func TestParseRetryAfter(t *testing.T) {
	httpTime := time.Now().Add(2 * time.Second).UTC().Format(http.TimeFormat)

	cases := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty", header: "", want: 5 * time.Second},
		{name: "seconds", header: "7", want: 7 * time.Second},
		{name: "fallback", header: "bad", want: 5 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseRetryAfter(tc.header))
		})
	}

	got := parseRetryAfter(httpTime)
	if got <= 0 || got > 3*time.Second {
		t.Fatalf("unexpected retry duration %v", got)
	}
}

func TestFlexIDAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A flexID `json:"a"`
		B flexID `json:"b"`
		C flexID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"x-1","c":null}`), &payload))
	assert.Equal(t, flexID("12"), payload.A)
	assert.Equal(t, flexID("x-1"), payload.B)
	assert.Equal(t, flexID(""), payload.C)
}
