package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/vpndash/internal/config"
	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	pkgAuth "github.com/polkiloo/vpndash/internal/pkg/auth"
)

const (
	oauthProvider   = "google"
	defaultNextPath = "/dashboard"
)

// AuthParams lists AuthUseCase dependencies.
type AuthParams struct {
	fx.In

	Config    *config.Config
	Backend   AuthBackend
	OAuth     OAuthProvider
	Captcha   CaptchaVerifier
	Inspector TokenInspector
	State     StateSigner
	Logger    *slog.Logger
}

// AuthUseCase handles sign-in flows and session lifecycle.
type AuthUseCase struct {
	backend   AuthBackend
	oauth     OAuthProvider
	captcha   CaptchaVerifier
	inspector TokenInspector
	state     StateSigner
	publicURL string
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(p AuthParams) *AuthUseCase {
	return &AuthUseCase{
		backend:   p.Backend,
		oauth:     p.OAuth,
		captcha:   p.Captcha,
		inspector: p.Inspector,
		state:     p.State,
		publicURL: p.Config.PublicURL,
		logger:    p.Logger,
		now:       time.Now,
	}
}

// Login validates captcha and exchanges credentials for a session.
func (u *AuthUseCase) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}
	if err := u.captcha.Verify(ctx, creds.Captcha, creds.RemoteIP); err != nil {
		return nil, err
	}

	session, err := u.backend.Login(ctx, email, creds.Password)
	if err != nil {
		return nil, credentialsError(err)
	}
	session.RememberMe = creds.RememberMe
	return session, nil
}

// SendOTP emails a one-time sign-in code.
func (u *AuthUseCase) SendOTP(ctx context.Context, email, captcha, remoteIP string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domainErrors.ErrInvalidInput
	}
	if err := u.captcha.Verify(ctx, captcha, remoteIP); err != nil {
		return err
	}
	return u.backend.SendOTP(ctx, email)
}

// VerifyOTP exchanges a one-time code for a session.
func (u *AuthUseCase) VerifyOTP(ctx context.Context, email, code string, rememberMe bool) (*model.Session, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, domainErrors.ErrInvalidInput
	}
	session, err := u.backend.VerifyOTP(ctx, email, code)
	if err != nil {
		return nil, credentialsError(err)
	}
	session.RememberMe = rememberMe
	return session, nil
}

// BeginOAuth prepares the provider redirect. The returned verifier must be
// kept by the caller until the callback arrives.
func (u *AuthUseCase) BeginOAuth(rememberMe bool, next string) (model.OAuthStart, error) {
	verifier, err := pkgAuth.NewVerifier()
	if err != nil {
		return model.OAuthStart{}, err
	}
	state := u.state.Issue(encodeState(rememberMe, safeNext(next)))
	redirectTo := u.publicURL + "/auth/callback?state=" + url.QueryEscape(state)

	authURL, err := u.oauth.AuthorizeURL(oauthProvider, redirectTo, pkgAuth.Challenge(verifier))
	if err != nil {
		return model.OAuthStart{}, err
	}
	return model.OAuthStart{URL: authURL, Verifier: verifier}, nil
}

// CompleteOAuth validates state and exchanges the authorization code.
// It returns the session and the path to continue to.
func (u *AuthUseCase) CompleteOAuth(ctx context.Context, code, state, verifier string) (*model.Session, string, error) {
	if code == "" || state == "" || verifier == "" {
		return nil, "", domainErrors.ErrUnauthorized
	}
	payload, err := u.state.Parse(state)
	if err != nil {
		return nil, "", fmt.Errorf("oauth state: %w", domainErrors.ErrUnauthorized)
	}
	rememberMe, next := decodeState(payload)

	session, err := u.oauth.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, "", err
	}
	session.RememberMe = rememberMe
	return session, next, nil
}

// Bootstrap decides whether a returning visitor is signed in. Only sessions
// marked remember-me are considered. Any failure leaves the visitor signed out.
func (u *AuthUseCase) Bootstrap(ctx context.Context, session model.Session) model.Bootstrap {
	if !session.RememberMe || (session.AccessToken == "" && session.RefreshToken == "") {
		return model.Bootstrap{}
	}

	var refreshed *model.Session
	token := session.AccessToken
	if u.Expired(token) {
		if session.RefreshToken == "" {
			return model.Bootstrap{}
		}
		next, err := u.RefreshSession(ctx, session.RefreshToken, true)
		if err != nil {
			u.logger.DebugContext(ctx, "bootstrap refresh failed", slog.String("error", err.Error()))
			return model.Bootstrap{}
		}
		refreshed = next
		token = next.AccessToken
	}

	profile, err := u.backend.Me(ctx, token)
	if err != nil {
		u.logger.DebugContext(ctx, "bootstrap profile check failed", slog.String("error", err.Error()))
		return model.Bootstrap{}
	}
	return model.Bootstrap{Authenticated: true, Profile: profile, Session: refreshed}
}

// Identify resolves the caller behind an access token. Tokens that cannot be
// verified locally are confirmed with the backend.
func (u *AuthUseCase) Identify(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, domainErrors.ErrUnauthorized
	}

	identity, err := u.inspector.Inspect(token)
	if err == nil && u.expiredAt(identity.ExpiresAt) {
		return model.Identity{}, domainErrors.ErrUnauthorized
	}
	if err == nil && u.inspector.Verifies() {
		return identity, nil
	}

	profile, err := u.backend.Me(ctx, token)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{UserID: profile.ID, Email: profile.Email, ExpiresAt: identity.ExpiresAt}, nil
}

// Me returns profile of token owner.
func (u *AuthUseCase) Me(ctx context.Context, token string) (*model.Profile, error) {
	if token == "" {
		return nil, domainErrors.ErrUnauthorized
	}
	return u.backend.Me(ctx, token)
}

// RefreshSession issues new tokens for refreshToken.
func (u *AuthUseCase) RefreshSession(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error) {
	if refreshToken == "" {
		return nil, domainErrors.ErrUnauthorized
	}
	session, err := u.backend.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidInput) || errors.Is(err, domainErrors.ErrForbidden) {
			return nil, domainErrors.ErrUnauthorized
		}
		return nil, err
	}
	session.RememberMe = rememberMe
	return session, nil
}

// Logout revokes the session on the backend. Failures are only logged.
func (u *AuthUseCase) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := u.backend.Logout(ctx, token); err != nil {
		u.logger.WarnContext(ctx, "backend logout failed", slog.String("error", err.Error()))
	}
}

// Expired reports whether token is missing or known to be past its expiry.
// Opaque tokens are assumed valid.
func (u *AuthUseCase) Expired(token string) bool {
	if token == "" {
		return true
	}
	identity, err := u.inspector.Inspect(token)
	if err != nil {
		return false
	}
	return u.expiredAt(identity.ExpiresAt)
}

func (u *AuthUseCase) expiredAt(t time.Time) bool {
	return !t.IsZero() && !u.now().Before(t)
}

func credentialsError(err error) error {
	if errors.Is(err, domainErrors.ErrUnauthorized) || errors.Is(err, domainErrors.ErrInvalidInput) {
		return domainErrors.ErrInvalidCredentials
	}
	return err
}

func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ""
	}
	return email
}

// safeNext keeps post sign-in redirects inside the dashboard.
func safeNext(next string) string {
	if next == defaultNextPath || strings.HasPrefix(next, defaultNextPath+"/") {
		return next
	}
	return defaultNextPath
}

func encodeState(rememberMe bool, next string) string {
	flag := "0"
	if rememberMe {
		flag = "1"
	}
	return flag + "|" + next
}

func decodeState(payload string) (bool, string) {
	flag, next, _ := strings.Cut(payload, "|")
	return flag == "1", safeNext(next)
}
