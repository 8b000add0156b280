package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/vpndash/internal/domain/errors"
)

// TooManyRequestsError represents rate limiting signal from the backend.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Delay returns how long the caller should wait before retrying.
func (e TooManyRequestsError) Delay() time.Duration {
	return e.RetryAfter
}

func (e TooManyRequestsError) Unwrap() error {
	return domainErrors.ErrUnavailable
}

// StatusError is returned for non-2xx backend responses.
// It unwraps to the domain error matching the status code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return domainErrors.FromStatus(e.Code)
}

// HTTPClient talks to the remote dashboard backend over REST.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates backend client with the given per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("backend url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// resource builds an escaped request path from fixed parts and caller
// supplied ids. Ids are escaped as a single segment and dot segments are
// rejected.
func resource(parts ...string) (string, error) {
	escaped := make([]string, 0, len(parts))
	for i, part := range parts {
		if i%2 == 0 {
			escaped = append(escaped, part)
			continue
		}
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("path segment %q: %w", part, domainErrors.ErrInvalidInput)
		}
		escaped = append(escaped, url.PathEscape(part))
	}
	return strings.Join(escaped, "/"), nil
}

// do sends the request to the escaped path p below the base URL.
func (c *HTTPClient) do(ctx context.Context, method, p, token string, body, out any) error {
	endpoint := *c.baseURL
	rawPath := path.Join(c.baseURL.EscapedPath(), p)
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p, domainErrors.ErrInvalidInput)
	}
	endpoint.Path, endpoint.RawPath = unescaped, rawPath

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", p, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, p, errors.Join(domainErrors.ErrUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", p, err)
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		level := slog.LevelWarn
		if resp.StatusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		c.logger.Log(ctx, level, "backend request failed",
			slog.String("method", method),
			slog.String("path", p),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Error != "":
		return payload.Error
	default:
		return payload.Detail
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
