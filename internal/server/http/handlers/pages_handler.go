package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/vpndash/internal/server/http/middleware"
	"github.com/polkiloo/vpndash/internal/server/http/pages"
)

const (
	verifierCookie = "oauth_verifier"
	verifierMaxAge = 600
)

// PagesHandler serves HTML routes and the OAuth redirects.
type PagesHandler struct {
	facade  AuthFacade
	cookies middleware.SessionCookies
	logger  *slog.Logger
}

// NewPagesHandler constructs PagesHandler.
func NewPagesHandler(facade AuthFacade, cookies middleware.SessionCookies, logger *slog.Logger) *PagesHandler {
	return &PagesHandler{facade: facade, cookies: cookies, logger: logger}
}

// Landing handles GET /.
func (h *PagesHandler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, pages.Landing, nil)
}

// SignIn handles GET /signin. Returning visitors with remember me are sent
// straight to the dashboard when their session still checks out.
func (h *PagesHandler) SignIn(c *gin.Context) {
	result := h.facade.Bootstrap(c.Request.Context(), h.cookies.Read(c))
	if result.Session != nil {
		h.cookies.Set(c, *result.Session)
	}
	if result.Authenticated {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	c.HTML(http.StatusOK, pages.SignIn, gin.H{
		"Message": pages.Reason(c.Query("reason")),
		"Next":    c.DefaultQuery("next", "/dashboard"),
	})
}

// Dashboard handles GET /dashboard and everything below it.
func (h *PagesHandler) Dashboard(c *gin.Context) {
	identity := CurrentIdentity(c)
	c.HTML(http.StatusOK, pages.Dashboard, gin.H{
		"Email":   identity.Email,
		"Section": strings.Trim(c.Param("path"), "/"),
	})
}

// GoogleStart handles GET /auth/google.
func (h *PagesHandler) GoogleStart(c *gin.Context) {
	start, err := h.facade.BeginOAuth(c.Query("remember_me") == "true", c.Query("next"))
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "oauth start failed", slog.String("error", err.Error()))
		c.Redirect(http.StatusSeeOther, middleware.SignInPath+"?reason=oauth_unavailable")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(verifierCookie, start.Verifier, verifierMaxAge, "/auth", h.cookies.Domain, h.cookies.Secure, true)
	c.Redirect(http.StatusFound, start.URL)
}

// OAuthCallback handles GET /auth/callback.
func (h *PagesHandler) OAuthCallback(c *gin.Context) {
	verifier, _ := c.Cookie(verifierCookie)
	c.SetCookie(verifierCookie, "", -1, "/auth", h.cookies.Domain, h.cookies.Secure, true)

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.WarnContext(c.Request.Context(), "oauth provider error", slog.String("error", providerErr))
		c.Redirect(http.StatusSeeOther, middleware.SignInPath+"?reason=oauth_failed")
		return
	}

	session, next, err := h.facade.CompleteOAuth(c.Request.Context(), c.Query("code"), c.Query("state"), verifier)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "oauth callback failed", slog.String("error", err.Error()))
		c.Redirect(http.StatusSeeOther, middleware.SignInPath+"?reason=oauth_failed")
		return
	}

	h.cookies.Set(c, *session)
	c.Redirect(http.StatusSeeOther, next)
}
