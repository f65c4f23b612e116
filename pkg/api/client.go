package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gasbot/pkg/logger"
)

// TokenSource hands the client the current token pair and accepts the
// replacement access token after a refresh. The session service is the
// single implementation and the single writer of token state.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	StoreAccessToken(access string) error
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logger.ILogger

	// refreshMu makes token refresh single-flight: concurrent requests
	// that all hit 401 wait here and reuse the first caller's result
	// instead of issuing a refresh storm.
	refreshMu sync.Mutex
}

func New(baseURL string, timeout time.Duration, tokens TokenSource, log logger.ILogger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do runs one JSON request through the interceptor: attach bearer,
// refresh-and-retry at most once on 401/403, decode into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	access := ""
	if c.tokens != nil {
		access = c.tokens.AccessToken()
	}

	status, respBody, err := c.send(ctx, method, path, payload, access)
	if err != nil {
		return err
	}

	if (status == http.StatusUnauthorized || status == http.StatusForbidden) && c.tokens != nil {
		newAccess, refreshErr := c.refreshAfter(ctx, access)
		if refreshErr != nil {
			c.log.Warning("token refresh failed", logger.String("path", path), logger.Error(refreshErr))
			return decodeError(status, respBody)
		}
		// Retry the original request exactly once with the new token.
		status, respBody, err = c.send(ctx, method, path, payload, newAccess)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return decodeError(status, respBody)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, access string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response from %s: %w", path, err)
	}
	return resp.StatusCode, data, nil
}

// ForceRefresh rotates the access token ahead of its expiry instead of
// waiting for the first 401. Used during session restore when the stored
// token is about to lapse.
func (c *Client) ForceRefresh(ctx context.Context) error {
	_, err := c.refreshAfter(ctx, c.tokens.AccessToken())
	return err
}

// refreshAfter exchanges the refresh token for a new access token. If a
// concurrent request already refreshed past staleAccess, its token is
// reused without another network call.
func (c *Client) refreshAfter(ctx context.Context, staleAccess string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if cur := c.tokens.AccessToken(); cur != "" && cur != staleAccess {
		return cur, nil
	}

	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		return "", fmt.Errorf("no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return "", err
	}
	status, body, err := c.send(ctx, http.MethodPost, epRefresh, payload, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", decodeError(status, body)
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		Access      string `json:"access"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	newAccess := resp.AccessToken
	if newAccess == "" {
		newAccess = resp.Access
	}
	if newAccess == "" {
		return "", fmt.Errorf("refresh response carried no access token")
	}
	if err := c.tokens.StoreAccessToken(newAccess); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}
	return newAccess, nil
}
