package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/polkiloo/vpndash/internal/config"
	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	testhelpers "github.com/polkiloo/vpndash/internal/test"
)

type authFixture struct {
	uc       *AuthUseCase
	backend  *testhelpers.BackendStub
	captcha  *int
	identity testhelpers.InspectorStub
}

func newAuthFixture(t *testing.T, captchaErr error, identities map[string]model.Identity, verified bool) authFixture {
	t.Helper()
	calls := 0
	backend := &testhelpers.BackendStub{}
	inspector := testhelpers.InspectorStub{Identities: identities, Verified: verified}
	uc := NewAuthUseCase(AuthParams{
		Config:    &config.Config{PublicURL: "https://vpn.example"},
		Backend:   backend,
		OAuth:     testhelpers.OAuthStub{},
		Captcha:   testhelpers.CaptchaStub{Err: captchaErr, Calls: &calls},
		Inspector: inspector,
		State:     testhelpers.SignerStub{},
		Logger:    discardLogger(),
	})
	return authFixture{uc: uc, backend: backend, captcha: &calls, identity: inspector}
}

func TestLoginValidatesInput(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	cases := []model.Credentials{
		{Email: "", Password: "x"},
		{Email: "not-an-email", Password: "x"},
		{Email: "u@example.com", Password: ""},
	}
	for _, creds := range cases {
		if _, err := f.uc.Login(context.Background(), creds); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials for %+v, got %v", creds, err)
		}
	}
	if f.backend.CallCount("Login") != 0 || *f.captcha != 0 {
		t.Fatal("invalid input must not reach captcha or backend")
	}
}

func TestLoginChecksCaptchaFirst(t *testing.T) {
	f := newAuthFixture(t, domainErrors.ErrCaptchaFailed, nil, false)
	_, err := f.uc.Login(context.Background(), model.Credentials{Email: "u@example.com", Password: "pw"})
	if !errors.Is(err, domainErrors.ErrCaptchaFailed) {
		t.Fatalf("expected captcha failure, got %v", err)
	}
	if f.backend.CallCount("Login") != 0 {
		t.Fatal("backend must not be called when captcha fails")
	}
}

func TestLoginSuccessAndRejection(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	f.backend.LoginFn = func(ctx context.Context, email, password string) (*model.Session, error) {
		if email != "u@example.com" {
			t.Fatalf("expected normalized email, got %q", email)
		}
		if password == "wrong" {
			return nil, domainErrors.ErrUnauthorized
		}
		return &model.Session{AccessToken: "a", RefreshToken: "r"}, nil
	}

	session, err := f.uc.Login(context.Background(), model.Credentials{Email: " U@Example.com ", Password: "pw", RememberMe: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.RememberMe || session.AccessToken != "a" {
		t.Fatalf("unexpected session %+v", session)
	}

	if _, err := f.uc.Login(context.Background(), model.Credentials{Email: "u@example.com", Password: "wrong"}); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestOTPFlow(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	f.backend.VerifyOTPFn = func(ctx context.Context, email, code string) (*model.Session, error) {
		if code != "123456" {
			return nil, domainErrors.ErrInvalidInput
		}
		return &model.Session{AccessToken: "otp"}, nil
	}

	if err := f.uc.SendOTP(context.Background(), "bad", "", ""); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := f.uc.SendOTP(context.Background(), "u@example.com", "tok", "1.1.1.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *f.captcha != 1 {
		t.Fatalf("expected captcha to be checked once, got %d", *f.captcha)
	}

	if _, err := f.uc.VerifyOTP(context.Background(), "u@example.com", "000000", false); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	session, err := f.uc.VerifyOTP(context.Background(), "u@example.com", " 123456 ", true)
	if err != nil || !session.RememberMe {
		t.Fatalf("unexpected result %+v %v", session, err)
	}
}

func TestOAuthRoundTrip(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	var redirect string
	f.uc.oauth = testhelpers.OAuthStub{
		AuthorizeFn: func(provider, redirectTo, challenge string) (string, error) {
			if provider != "google" || challenge == "" {
				t.Fatalf("unexpected authorize args %s %s", provider, challenge)
			}
			redirect = redirectTo
			return "https://auth.example/authorize", nil
		},
		ExchangeFn: func(ctx context.Context, code, verifier string) (*model.Session, error) {
			if code != "code-1" || verifier == "" {
				t.Fatalf("unexpected exchange args %s %s", code, verifier)
			}
			return &model.Session{AccessToken: "a"}, nil
		},
	}

	start, err := f.uc.BeginOAuth(true, "/dashboard/orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.URL != "https://auth.example/authorize" || start.Verifier == "" {
		t.Fatalf("unexpected start %+v", start)
	}
	if !strings.HasPrefix(redirect, "https://vpn.example/auth/callback?state=") {
		t.Fatalf("unexpected redirect %s", redirect)
	}
	parsed, _ := url.Parse(redirect)
	state := parsed.Query().Get("state")

	session, next, err := f.uc.CompleteOAuth(context.Background(), "code-1", state, start.Verifier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.RememberMe || next != "/dashboard/orders" {
		t.Fatalf("unexpected completion %+v %s", session, next)
	}
}

func TestCompleteOAuthRejectsBadState(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	if _, _, err := f.uc.CompleteOAuth(context.Background(), "code", "forged", "v"); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, err := f.uc.CompleteOAuth(context.Background(), "", "signed:1|/dashboard", "v"); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing code, got %v", err)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                    "/dashboard",
		"/dashboard":          "/dashboard",
		"/dashboard/plans":    "/dashboard/plans",
		"https://evil.com":    "/dashboard",
		"//evil.com":          "/dashboard",
		"/dashboardx":         "/dashboard",
	}
	for in, want := range cases {
		if got := safeNext(in); got != want {
			t.Fatalf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBootstrapWithoutRememberMeSkipsBackend(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	result := f.uc.Bootstrap(context.Background(), model.Session{AccessToken: "a", RefreshToken: "r", RememberMe: false})
	if result.Authenticated {
		t.Fatal("expected visitor to stay signed out")
	}
	if f.backend.CallCount("Me") != 0 || f.backend.CallCount("Refresh") != 0 {
		t.Fatal("backend must not be called without remember me")
	}
}

func TestBootstrapValidatesWithMe(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	f.backend.MeFn = func(ctx context.Context, token string) (*model.Profile, error) {
		if token == "good" {
			return &model.Profile{ID: "1"}, nil
		}
		return nil, domainErrors.ErrUnauthorized
	}

	if r := f.uc.Bootstrap(context.Background(), model.Session{AccessToken: "good", RememberMe: true}); !r.Authenticated || r.Profile.ID != "1" || r.Session != nil {
		t.Fatalf("unexpected bootstrap %+v", r)
	}
	if r := f.uc.Bootstrap(context.Background(), model.Session{AccessToken: "bad", RememberMe: true}); r.Authenticated {
		t.Fatal("non-OK profile response must leave visitor signed out")
	}
}

func TestBootstrapRefreshesExpiredToken(t *testing.T) {
	expired := map[string]model.Identity{"old": {UserID: "1", ExpiresAt: time.Now().Add(-time.Minute)}}
	f := newAuthFixture(t, nil, expired, true)
	f.backend.RefreshFn = func(ctx context.Context, refreshToken string) (*model.Session, error) {
		return &model.Session{AccessToken: "new", RefreshToken: "r2"}, nil
	}
	f.backend.MeFn = func(ctx context.Context, token string) (*model.Profile, error) {
		if token != "new" {
			t.Fatalf("expected refreshed token, got %s", token)
		}
		return &model.Profile{ID: "1"}, nil
	}

	r := f.uc.Bootstrap(context.Background(), model.Session{AccessToken: "old", RefreshToken: "r", RememberMe: true})
	if !r.Authenticated || r.Session == nil || r.Session.AccessToken != "new" || !r.Session.RememberMe {
		t.Fatalf("unexpected bootstrap %+v", r)
	}
}

func TestIdentify(t *testing.T) {
	ids := map[string]model.Identity{
		"jwt":     {UserID: "u1", Email: "u@example.com", ExpiresAt: time.Now().Add(time.Hour)},
		"expired": {UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)},
	}

	verified := newAuthFixture(t, nil, ids, true)
	identity, err := verified.uc.Identify(context.Background(), "jwt")
	if err != nil || identity.UserID != "u1" {
		t.Fatalf("unexpected identity %+v %v", identity, err)
	}
	if verified.backend.CallCount("Me") != 0 {
		t.Fatal("verified tokens must not hit the backend")
	}
	if _, err := verified.uc.Identify(context.Background(), "expired"); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
	if _, err := verified.uc.Identify(context.Background(), ""); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}

	unverified := newAuthFixture(t, nil, ids, false)
	unverified.backend.MeFn = func(ctx context.Context, token string) (*model.Profile, error) {
		return &model.Profile{ID: "backend-id", Email: "b@example.com"}, nil
	}
	identity, err = unverified.uc.Identify(context.Background(), "jwt")
	if err != nil || identity.UserID != "backend-id" {
		t.Fatalf("expected backend confirmed identity, got %+v %v", identity, err)
	}
	identity, err = unverified.uc.Identify(context.Background(), "opaque")
	if err != nil || identity.UserID != "backend-id" {
		t.Fatalf("expected opaque token to be resolved by backend, got %+v %v", identity, err)
	}
}

func TestRefreshSessionMapsRejections(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	f.backend.RefreshFn = func(context.Context, string) (*model.Session, error) {
		return nil, domainErrors.ErrInvalidInput
	}
	if _, err := f.uc.RefreshSession(context.Background(), "r", false); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := f.uc.RefreshSession(context.Background(), "", false); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
}

func TestLogoutIsBestEffort(t *testing.T) {
	f := newAuthFixture(t, nil, nil, false)
	f.backend.LogoutFn = func(context.Context, string) error { return domainErrors.ErrUnavailable }
	f.uc.Logout(context.Background(), "a")
	f.uc.Logout(context.Background(), "")
	if f.backend.CallCount("Logout") != 1 {
		t.Fatalf("expected a single backend logout, got %d", f.backend.CallCount("Logout"))
	}
}
