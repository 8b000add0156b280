package test

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// OAuthStub simulates the OAuth provider.
type OAuthStub struct {
	AuthorizeFn func(provider, redirectTo, challenge string) (string, error)
	ExchangeFn  func(ctx context.Context, code, verifier string) (*model.Session, error)
}

// AuthorizeURL returns a predictable redirect by default.
func (s OAuthStub) AuthorizeURL(provider, redirectTo, challenge string) (string, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(provider, redirectTo, challenge)
	}
	return "https://auth.example/authorize?provider=" + provider, nil
}

// ExchangeCode returns a session for any code by default.
func (s OAuthStub) ExchangeCode(ctx context.Context, code, verifier string) (*model.Session, error) {
	if s.ExchangeFn != nil {
		return s.ExchangeFn(ctx, code, verifier)
	}
	return &model.Session{AccessToken: "oauth-access", RefreshToken: "oauth-refresh"}, nil
}

// CaptchaStub accepts every token unless Err is set.
type CaptchaStub struct {
	Err   error
	Calls *int
}

// Verify returns configured error.
func (s CaptchaStub) Verify(ctx context.Context, token, remoteIP string) error {
	if s.Calls != nil {
		*s.Calls++
	}
	return s.Err
}

// InspectorStub maps tokens to identities.
type InspectorStub struct {
	Identities map[string]model.Identity
	Verified   bool
}

// Inspect returns identity registered for token.
func (s InspectorStub) Inspect(token string) (model.Identity, error) {
	if id, ok := s.Identities[token]; ok {
		return id, nil
	}
	return model.Identity{}, domainErrors.ErrUnauthorized
}

// Verifies reports configured verification mode.
func (s InspectorStub) Verifies() bool { return s.Verified }

// SignerStub prefixes payloads instead of signing them.
type SignerStub struct{}

// Issue wraps payload.
func (SignerStub) Issue(payload string) string { return "signed:" + payload }

// Parse unwraps payload issued by Issue.
func (SignerStub) Parse(state string) (string, error) {
	if !strings.HasPrefix(state, "signed:") {
		return "", domainErrors.ErrUnauthorized
	}
	return strings.TrimPrefix(state, "signed:"), nil
}

// PaymentStub simulates the payment gateway.
type PaymentStub struct {
	Err error
	Got *model.CheckoutRequest
}

// CreateSession records request and returns a fixed session.
func (s *PaymentStub) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	s.Got = &req
	if s.Err != nil {
		return nil, s.Err
	}
	return &model.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}
