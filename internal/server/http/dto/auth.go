package dto

// LoginRequest describes email/password sign-in payload.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Captcha    string `json:"captcha_token"`
	RememberMe bool   `json:"remember_me"`
}

// OTPSendRequest asks for a one-time sign-in code.
type OTPSendRequest struct {
	Email   string `json:"email"`
	Captcha string `json:"captcha_token"`
}

// OTPVerifyRequest exchanges a one-time code for a session.
type OTPVerifyRequest struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	RememberMe bool   `json:"remember_me"`
}

// SessionResponse is returned after a successful sign-in. Tokens travel in cookies only.
type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	RememberMe    bool             `json:"remember_me"`
	Profile       *ProfileResponse `json:"profile,omitempty"`
}

// ProfileResponse describes the signed in account.
type ProfileResponse struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name,omitempty"`
	Balance float64 `json:"balance"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionExpiredResponse tells the client to go back to sign-in.
type SessionExpiredResponse struct {
	Error           string `json:"error"`
	Redirect        string `json:"redirect"`
	RedirectAfterMs int64  `json:"redirect_after_ms"`
}
