package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/vpndash/internal/config"
	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	RememberMeCookie   = "remember_me"

	// SignInPath is where expired sessions are sent.
	SignInPath = "/signin"
)

// SessionCookies reads and writes the session cookie triple.
type SessionCookies struct {
	Domain        string
	Secure        bool
	RememberTTL   time.Duration
	RedirectDelay time.Duration
}

// NewSessionCookies builds cookie settings from configuration.
func NewSessionCookies(cfg *config.Config) SessionCookies {
	return SessionCookies{
		Domain:        cfg.CookieDomain,
		Secure:        cfg.CookieSecure,
		RememberTTL:   cfg.RememberMeTTL,
		RedirectDelay: cfg.RedirectDelay,
	}
}

// Read returns the session stored in request cookies.
func (s SessionCookies) Read(c *gin.Context) model.Session {
	var session model.Session
	session.AccessToken, _ = c.Cookie(AccessTokenCookie)
	session.RefreshToken, _ = c.Cookie(RefreshTokenCookie)
	remember, _ := c.Cookie(RememberMeCookie)
	session.RememberMe, _ = strconv.ParseBool(remember)
	return session
}

// Set writes session cookies. Remember-me sessions persist for RememberTTL,
// others end with the browser session.
func (s SessionCookies) Set(c *gin.Context, session model.Session) {
	maxAge := 0
	if session.RememberMe {
		maxAge = int(s.RememberTTL.Seconds())
	}
	s.write(c, AccessTokenCookie, session.AccessToken, maxAge, true)
	if session.RefreshToken != "" {
		s.write(c, RefreshTokenCookie, session.RefreshToken, maxAge, true)
	}
	s.write(c, RememberMeCookie, strconv.FormatBool(session.RememberMe), maxAge, false)
}

// Clear expires all session cookies.
func (s SessionCookies) Clear(c *gin.Context) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, RememberMeCookie} {
		s.write(c, name, "", -1, name != RememberMeCookie)
	}
}

// Expired clears the session and tells the API client to sign in again.
func (s SessionCookies) Expired(c *gin.Context) {
	s.Clear(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.SessionExpiredResponse{
		Error:           domainErrors.UserMessage(domainErrors.ErrUnauthorized),
		Redirect:        SignInPath,
		RedirectAfterMs: s.RedirectDelay.Milliseconds(),
	})
}

// ExpiredPage clears the session and redirects a browser to sign-in.
func (s SessionCookies) ExpiredPage(c *gin.Context) {
	s.Clear(c)
	c.Redirect(http.StatusSeeOther, SignInPath+"?reason=session_expired")
	c.Abort()
}

func (s SessionCookies) write(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", s.Domain, s.Secure, httpOnly)
}
