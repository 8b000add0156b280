package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/vpndash/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Claims are the access token claims the dashboard relies on.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Inspector reads identity from access tokens issued by the auth provider.
// With a secret the HS256 signature is verified, otherwise the token is
// parsed without verification and only used as a hint.
type Inspector struct {
	secret []byte
}

// NewInspector creates Inspector. An empty secret disables verification.
func NewInspector(secret string) *Inspector {
	in := &Inspector{}
	if secret != "" {
		in.secret = []byte(secret)
	}
	return in
}

// Verifies reports whether signatures are checked.
func (i *Inspector) Verifies() bool { return len(i.secret) > 0 }

// Inspect extracts identity from token. Expiry is reported, not enforced.
func (i *Inspector) Inspect(token string) (model.Identity, error) {
	claims := &Claims{}
	if i.Verifies() {
		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
		if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return i.secret, nil
		}); err != nil {
			return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if claims.Subject == "" {
		return model.Identity{}, ErrInvalidToken
	}

	identity := model.Identity{UserID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
