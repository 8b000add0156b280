package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

// Login exchanges email/password for a session.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*model.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", credentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(time.Now()), nil
}

// SendOTP asks the backend to email a one-time code.
func (c *HTTPClient) SendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/otp/send", "", otpRequest{Email: email}, nil)
}

// VerifyOTP exchanges a one-time code for a session.
func (c *HTTPClient) VerifyOTP(ctx context.Context, email, code string) (*model.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/otp/verify", "", otpRequest{Email: email, Code: code}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(time.Now()), nil
}

// Refresh issues new tokens for a refresh token.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	session := resp.toModel(time.Now())
	if session.RefreshToken == "" {
		session.RefreshToken = refreshToken
	}
	return session, nil
}

// Logout revokes the session on the backend.
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Me returns the profile bound to token.
func (c *HTTPClient) Me(ctx context.Context, token string) (*model.Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}
