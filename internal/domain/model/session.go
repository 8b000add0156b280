package model

import "time"

// Session holds tokens issued by the backend or Supabase.
type Session struct {
	AccessToken  string
	RefreshToken string
	RememberMe   bool
	ExpiresAt    time.Time
}

// Profile is the account returned by the /me endpoint.
type Profile struct {
	ID      string
	Email   string
	Name    string
	Balance float64
}

// Identity is what the HTTP layer knows about the caller.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Credentials carry email/password sign-in input.
type Credentials struct {
	Email      string
	Password   string
	Captcha    string
	RemoteIP   string
	RememberMe bool
}

// Bootstrap is the outcome of an automatic sign-in attempt.
type Bootstrap struct {
	Authenticated bool
	Profile       *Profile
	// Session is set when tokens were refreshed during bootstrap.
	Session *Session
}

// OAuthStart carries data required to begin an OAuth redirect.
type OAuthStart struct {
	URL      string
	Verifier string
}
