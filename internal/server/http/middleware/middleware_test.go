package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/vpndash/internal/config"
	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	testhelpers "github.com/polkiloo/vpndash/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testCookies() SessionCookies {
	return SessionCookies{RememberTTL: time.Hour, RedirectDelay: 1500 * time.Millisecond}
}

func cookieMap(resp *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	router := gin.New()
	router.Use(AuthRequired(testhelpers.AuthenticatorStub{}, testCookies(), discardLogger()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	var body dto.SessionExpiredResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Redirect != "/signin" || body.RedirectAfterMs != 1500 || body.Error == "" {
		t.Fatalf("unexpected body %+v", body)
	}
	cookies := cookieMap(resp)
	if c, ok := cookies[AccessTokenCookie]; !ok || c.MaxAge >= 0 {
		t.Fatalf("expected access token cookie to be cleared, got %+v", c)
	}
}

func TestAuthRequiredAcceptsBearerAndCookie(t *testing.T) {
	auth := testhelpers.AuthenticatorStub{Identities: map[string]model.Identity{"tok": {UserID: "u1"}}}

	var got model.Identity
	var token string
	router := gin.New()
	router.Use(AuthRequired(auth, testCookies(), discardLogger()))
	router.GET("/", func(c *gin.Context) {
		got = c.MustGet(IdentityContextKey).(model.Identity)
		token = c.GetString(TokenContextKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || got.UserID != "u1" || token != "tok" {
		t.Fatalf("unexpected bearer result %d %+v %q", resp.Code, got, token)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "tok"})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie, got %d", resp.Code)
	}
}

func TestAuthRequiredRefreshesExpiredCookie(t *testing.T) {
	auth := testhelpers.AuthenticatorStub{
		Identities:    map[string]model.Identity{"new": {UserID: "u1"}},
		ExpiredTokens: map[string]bool{"old": true},
		RefreshFn: func(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error) {
			if refreshToken != "r1" || !rememberMe {
				t.Fatalf("unexpected refresh args %q %v", refreshToken, rememberMe)
			}
			return &model.Session{AccessToken: "new", RefreshToken: "r2", RememberMe: rememberMe}, nil
		},
	}
	router := gin.New()
	router.Use(AuthRequired(auth, testCookies(), discardLogger()))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(TokenContextKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "old"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r1"})
	req.AddCookie(&http.Cookie{Name: RememberMeCookie, Value: "true"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || resp.Body.String() != "new" {
		t.Fatalf("expected refreshed token to be used, got %d %q", resp.Code, resp.Body.String())
	}
	cookies := cookieMap(resp)
	if cookies[AccessTokenCookie].Value != "new" || cookies[RefreshTokenCookie].Value != "r2" {
		t.Fatalf("expected renewed cookies, got %+v", cookies)
	}
	if cookies[AccessTokenCookie].MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("expected persistent cookie for remember me, got %d", cookies[AccessTokenCookie].MaxAge)
	}
}

func TestAuthRequiredRefreshFailureExpiresSession(t *testing.T) {
	auth := testhelpers.AuthenticatorStub{ExpiredTokens: map[string]bool{"old": true}}
	router := gin.New()
	router.Use(AuthRequired(auth, testCookies(), discardLogger()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "old"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r1"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRequiredUpstreamFailure(t *testing.T) {
	auth := testhelpers.AuthenticatorStub{IdentifyErr: domainErrors.ErrUnavailable}
	router := gin.New()
	router.Use(AuthRequired(auth, testCookies(), discardLogger()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatal("upstream failures must keep the session")
	}
}

func TestPageAuthRequiredRedirects(t *testing.T) {
	router := gin.New()
	router.Use(PageAuthRequired(testhelpers.AuthenticatorStub{}, testCookies()))
	router.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "unknown"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/signin?reason=session_expired" {
		t.Fatalf("unexpected redirect %d %q", resp.Code, resp.Header().Get("Location"))
	}
}

func TestDashboardGate(t *testing.T) {
	router := gin.New()
	router.Use(DashboardGate())
	router.GET("/dashboard/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/dashboard/orders", nil))
	if resp.Code != http.StatusFound || resp.Header().Get("Location") != "/signin" {
		t.Fatalf("expected redirect to signin, got %d %q", resp.Code, resp.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/orders", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "tok"})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass through, got %d", resp.Code)
	}
}

func TestSessionCookiesSetAndRead(t *testing.T) {
	cookies := NewSessionCookies(&config.Config{CookieDomain: "vpn.example", CookieSecure: true, RememberMeTTL: time.Hour})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	cookies.Set(c, model.Session{AccessToken: "a", RefreshToken: "r", RememberMe: false})

	written := cookieMap(recorder)
	access := written[AccessTokenCookie]
	if access == nil || !access.HttpOnly || !access.Secure || access.MaxAge != 0 || access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected access cookie %+v", access)
	}
	if written[RememberMeCookie].HttpOnly || written[RememberMeCookie].Value != "false" {
		t.Fatalf("remember me cookie must be readable, got %+v", written[RememberMeCookie])
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range written {
		req.AddCookie(ck)
	}
	c.Request = req
	session := cookies.Read(c)
	if session.AccessToken != "a" || session.RefreshToken != "r" || session.RememberMe {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = c.GetString(RequestIDContextKey)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || resp.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated request id, got %q / %q", seen, resp.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if seen != "abc" {
		t.Fatalf("expected caller request id, got %q", seen)
	}
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("expected allowed origin, got %q", resp.Header().Get("Access-Control-Allow-Origin"))
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected origin must not be allowed")
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest(1 << 20))
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for broken gzip, got %d", resp.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var logged bool
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "request_id" && a.Value.String() == "rid" {
			logged = true
		}
		return a
	}})
	logger := slog.New(handler)

	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "rid")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if !logged {
		t.Fatalf("expected request to be logged with request id")
	}
}
