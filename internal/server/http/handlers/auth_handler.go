package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
	"github.com/polkiloo/vpndash/internal/domain/model"
	"github.com/polkiloo/vpndash/internal/server/http/dto"
	"github.com/polkiloo/vpndash/internal/server/http/middleware"
)

// AuthHandler processes sign-in, OTP and session endpoints.
type AuthHandler struct {
	facade  AuthFacade
	cookies middleware.SessionCookies
	logger  *slog.Logger
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade, cookies middleware.SessionCookies, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{facade: facade, cookies: cookies, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	session, err := h.facade.Login(c.Request.Context(), model.Credentials{
		Email:      req.Email,
		Password:   req.Password,
		Captcha:    req.Captcha,
		RemoteIP:   c.ClientIP(),
		RememberMe: req.RememberMe,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.signedIn(c, session)
}

// SendOTP handles POST /api/auth/otp/send.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req dto.OTPSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.facade.SendOTP(c.Request.Context(), req.Email, req.Captcha, c.ClientIP()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// VerifyOTP handles POST /api/auth/otp/verify.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	session, err := h.facade.VerifyOTP(c.Request.Context(), req.Email, req.Code, req.RememberMe)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.signedIn(c, session)
}

// Refresh handles POST /api/auth/refresh using the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	current := h.cookies.Read(c)
	session, err := h.facade.RefreshSession(c.Request.Context(), current.RefreshToken, current.RememberMe)
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	h.cookies.Set(c, *session)
	c.JSON(http.StatusOK, dto.SessionResponse{Authenticated: true, RememberMe: session.RememberMe})
}

// Logout handles POST /api/auth/logout. Cookies are always cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.facade.Logout(c.Request.Context(), h.cookies.Read(c).AccessToken)
	h.cookies.Clear(c)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.facade.Me(c.Request.Context(), currentToken(c))
	if err != nil {
		respondError(c, h.cookies, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (h *AuthHandler) signedIn(c *gin.Context, session *model.Session) {
	h.cookies.Set(c, *session)
	resp := dto.SessionResponse{Authenticated: true, RememberMe: session.RememberMe}
	if profile, err := h.facade.Me(c.Request.Context(), session.AccessToken); err == nil {
		resp.Profile = toProfileResponse(profile)
	} else {
		h.logger.WarnContext(c.Request.Context(), "profile after sign-in failed", slog.String("error", err.Error()))
	}
	c.JSON(http.StatusOK, resp)
}

// fail reports sign-in errors. Rejected credentials are not a session expiry.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(domainErrors.HTTPStatus(err), dto.ErrorResponse{Error: domainErrors.UserMessage(err)})
}
