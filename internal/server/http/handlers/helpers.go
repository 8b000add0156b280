package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return model.Identity{}
	}
	identity, _ := val.(model.Identity)
	return identity
}

// CurrentOwner pairs the caller with their access token.
func CurrentOwner(c *gin.Context) model.Owner {
	return model.Owner{UserID: CurrentIdentity(c).UserID, Token: c.GetString(middleware.TokenContextKey)}
}

func currentToken(c *gin.Context) string {
	return c.GetString(middleware.TokenContextKey)
}

// respondError writes err in the API error format. An expired session also
// clears cookies and carries the sign-in redirect.
func respondError(c *gin.Context, cookies middleware.SessionCookies, err error) {
	if errors.Is(err, domainErrors.ErrUnauthorized) {
		cookies.Expired(c)
		return
	}
	c.AbortWithStatusJSON(domainErrors.HTTPStatus(err), dto.ErrorResponse{Error: domainErrors.UserMessage(err)})
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainErrors.UserMessage(domainErrors.ErrInvalidInput)})
}

func toProfileResponse(p *model.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{ID: p.ID, Email: p.Email, Name: p.Name, Balance: p.Balance}
}
