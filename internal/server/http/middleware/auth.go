package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
)

const (
	// IdentityContextKey is a gin context key for the authenticated caller.
	IdentityContextKey = "identity"
	// TokenContextKey is a gin context key for the caller's access token.
	TokenContextKey = "accessToken"
)

// Authenticator resolves and renews sessions.
type Authenticator interface {
	Identify(ctx context.Context, token string) (model.Identity, error)
	Expired(token string) bool
	RefreshSession(ctx context.Context, refreshToken string, rememberMe bool) (*model.Session, error)
}

// AuthRequired ensures the API caller is authenticated. An expired access
// token is renewed with the refresh cookie and the new cookies are sent back.
func AuthRequired(auth Authenticator, cookies SessionCookies, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := authenticate(c, auth, cookies)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, domainErrors.ErrUnauthorized):
			cookies.Expired(c)
		default:
			logger.ErrorContext(c.Request.Context(), "session check failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(domainErrors.HTTPStatus(err), dto.ErrorResponse{Error: domainErrors.UserMessage(err)})
		}
	}
}

// PageAuthRequired is AuthRequired for HTML routes: failures redirect to sign-in.
func PageAuthRequired(auth Authenticator, cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, auth, cookies); err != nil {
			cookies.ExpiredPage(c)
			return
		}
		c.Next()
	}
}

// DashboardGate sends visitors without an access token cookie to sign-in.
func DashboardGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(AccessTokenCookie); err != nil || token == "" {
			c.Redirect(http.StatusFound, SignInPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, auth Authenticator, cookies SessionCookies) error {
	ctx := c.Request.Context()
	token := bearerToken(c)
	fromHeader := token != ""
	session := cookies.Read(c)
	if !fromHeader {
		token = session.AccessToken
	}

	if !fromHeader && session.RefreshToken != "" && auth.Expired(token) {
		renewed, err := auth.RefreshSession(ctx, session.RefreshToken, session.RememberMe)
		if err != nil {
			return err
		}
		cookies.Set(c, *renewed)
		token = renewed.AccessToken
	}
	if token == "" {
		return domainErrors.ErrUnauthorized
	}

	identity, err := auth.Identify(ctx, token)
	if err != nil {
		return err
	}

	c.Set(IdentityContextKey, identity)
	c.Set(TokenContextKey, token)
	return nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
