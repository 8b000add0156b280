package test

import (
	"context"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
)

// AuthenticatorStub resolves tokens from a fixed table.
type AuthenticatorStub struct {
	Identities map[string]model.Identity
	// ExpiredTokens lists tokens reported as expired.
	ExpiredTokens map[string]bool
	// IdentifyErr replaces the lookup result when set.
	IdentifyErr error
	RefreshFn   func(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error)
}

// Identify returns identity registered for token.
func (s AuthenticatorStub) Identify(ctx context.Context, token string) (model.Identity, error) {
	if s.IdentifyErr != nil {
		return model.Identity{}, s.IdentifyErr
	}
	if id, ok := s.Identities[token]; ok && !s.ExpiredTokens[token] {
		return id, nil
	}
	return model.Identity{}, domainErrors.ErrUnauthorized
}

// Expired reports configured expiry.
func (s AuthenticatorStub) Expired(token string) bool {
	return token == "" || s.ExpiredTokens[token]
}

// RefreshSession delegates to RefreshFn or rejects the refresh token.
func (s AuthenticatorStub) RefreshSession(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error) {
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, refreshToken, rememberMe)
	}
	return nil, domainErrors.ErrUnauthorized
}
