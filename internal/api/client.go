// Package api is the typed HTTP client for the storefront backend. It owns
// the wire contract: paths, envelopes, bearer auth, and the mapping of
// non-2xx responses into the client's error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
	"github.com/miku-nicol/klassyz-hair-client/pkg/httpclient"
	"github.com/miku-nicol/klassyz-hair-client/pkg/logger"
)

// TokenSource yields the current bearer credential. It is read fresh before
// every authenticated call; validity is never cached.
type TokenSource interface {
	Token() (string, bool)
}

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the storefront backend.
type Client struct {
	baseURL        string
	http           Doer
	tokens         TokenSource
	logger         *slog.Logger
	onUnauthorized func()
}

// New creates a backend client rooted at baseURL (e.g.
// "https://shop.example.com/api").
func New(baseURL string, doer Doer, tokens TokenSource, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		tokens:  tokens,
		logger:  log,
	}
}

// SetUnauthorizedHook registers a callback invoked whenever the backend
// answers 401. The session store uses it to drop the rejected credential.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// requireToken reads the credential, failing without any network traffic
// when it is absent.
func (c *Client) requireToken() (string, error) {
	token, ok := c.tokens.Token()
	if !ok || token == "" {
		return "", apperrors.Unauthenticated("no credential available")
	}
	return token, nil
}

// do issues one request and decodes the 2xx JSON body into out (when out is
// non-nil). authed requests carry the bearer credential; a missing
// credential fails before any network call.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, authed bool) error {
	var token string
	if authed {
		var err error
		if token, err = c.requireToken(); err != nil {
			return err
		}
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return apperrors.Wrap(apperrors.ErrUnavailable, fmt.Sprintf("%s: %v", op, err))
	}

	logger.WithContext(ctx, c.logger).DebugContext(ctx, "request completed",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		// The backend rejected the token: treat the session as logged out.
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, op)
	}

	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
