package supabase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

const authPath = "/auth/v1"

// Client performs the PKCE OAuth flow against Supabase Auth.
type Client struct {
	baseURL   *url.URL
	api       auth.Client
	anonKey   string
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
}

// NewClient creates Supabase Auth client. An empty baseURL yields a disabled client.
func NewClient(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	c := &Client{anonKey: anonKey, timeout: timeout, transport: http.DefaultTransport, logger: logger}
	if baseURL == "" {
		return c, nil
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("supabase url must be absolute")
	}
	c.baseURL = parsed
	c.api = auth.New("", anonKey).WithCustomAuthURL(parsed.String() + authPath)
	return c, nil
}

// Enabled reports whether OAuth is configured.
func (c *Client) Enabled() bool { return c.baseURL != nil }

// AuthorizeURL builds the provider redirect with an S256 code challenge.
// The redirect target carries the signed state, so the URL is assembled
// here rather than resolved through the auth API.
func (c *Client) AuthorizeURL(provider, redirectTo, challenge string) (string, error) {
	if !c.Enabled() {
		return "", domainErrors.ErrNotConfigured
	}
	endpoint := *c.baseURL
	endpoint.Path += authPath + "/authorize"
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "s256")
	endpoint.RawQuery = q.Encode()
	return endpoint.String(), nil
}

// ExchangeCode trades an authorization code and verifier for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*model.Session, error) {
	if !c.Enabled() {
		return nil, domainErrors.ErrNotConfigured
	}

	call := &callTransport{ctx: ctx, next: c.transport}
	resp, err := c.api.WithClient(http.Client{Timeout: c.timeout, Transport: call}).Token(types.TokenRequest{
		GrantType:    "pkce",
		Code:         code,
		CodeVerifier: verifier,
	})
	if err != nil {
		return nil, c.exchangeError(ctx, call.status, err)
	}
	if resp.AccessToken == "" {
		return nil, domainErrors.ErrUnauthorized
	}

	session := &model.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	switch {
	case resp.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(int64(resp.ExpiresAt), 0).UTC()
	case resp.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}
	return session, nil
}

func (c *Client) exchangeError(ctx context.Context, status int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if status == 0 {
		return fmt.Errorf("supabase token exchange: %w", errors.Join(domainErrors.ErrUnavailable, err))
	}
	c.logger.WarnContext(ctx, "supabase token exchange failed",
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return domainErrors.ErrUnauthorized
	default:
		return fmt.Errorf("supabase token exchange: %w", domainErrors.FromStatus(status))
	}
}

// callTransport binds a single auth API call to ctx and records the
// response status.
type callTransport struct {
	ctx    context.Context
	next   http.RoundTripper
	status int
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req.WithContext(t.ctx))
	if resp != nil {
		t.status = resp.StatusCode
	}
	return resp, err
}
