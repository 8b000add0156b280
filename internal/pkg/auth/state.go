package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidState = errors.New("invalid oauth state")

// Options tune signed value lifetime.
type Options struct {
	TTL time.Duration
}

// StateSigner issues and verifies HMAC signed OAuth state values.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner builds StateSigner with provided secret and options.
func NewStateSigner(secret string, opts Options) *StateSigner {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs payload. The result is safe to place in a URL query.
func (s *StateSigner) Issue(payload string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	expires := s.now().Add(s.ttl).Unix()
	body := fmt.Sprintf("%s.%d", encoded, expires)
	return body + "." + s.sign(body)
}

// Parse validates state and returns the original payload.
func (s *StateSigner) Parse(state string) (string, error) {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return "", ErrInvalidState
	}

	body := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(body)), []byte(parts[2])) {
		return "", ErrInvalidState
	}

	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidState
	}
	if time.Unix(expires, 0).Before(s.now()) {
		return "", ErrInvalidState
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidState
	}
	return string(payload), nil
}

func (s *StateSigner) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
