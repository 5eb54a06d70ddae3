// Package meli is the read-only client for the Mercado Libre
// catalog/search/price API.
package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/nachov/ipcmeli/internal/secrets"
	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/httputil"
	"github.com/nachov/ipcmeli/pkg/logger"
)

// SourceError signals that the upstream API could not serve a request. It is
// scoped (one category, one batch): callers skip the scope and continue.
type SourceError struct {
	Scope string // e.g. "category MLA1234", "price batch"
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("meli source unavailable (%s): %v", e.Scope, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Client handles communication with the Mercado Libre API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.MeliConfig
	tokens     secrets.Store

	// Access-token cache
	accessToken string
	tokenExpiry time.Time
	tokenMu     sync.RWMutex
}

// NewClient creates a new Mercado Libre API client. tokens holds the
// refresh token between runs; rotated tokens are written back through it.
func NewClient(cfg config.MeliConfig, tokens secrets.Store, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "meli"),
		cfg:        cfg,
		tokens:     tokens,
	}
}

// tokenResponse is the OAuth refresh exchange response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// getToken returns a valid access token, performing the refresh-token
// exchange when the cached one is missing or expired. The upstream rotates
// the refresh token on every exchange; the new one is persisted immediately.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMu.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.tokenMu.RUnlock()
		return token, nil
	}
	c.tokenMu.RUnlock()

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Double-check after acquiring write lock
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	refreshToken, err := c.tokens.Load()
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {refreshToken},
	}

	resp, err := c.httpClient.PostForm(ctx, c.cfg.BaseURL+"/oauth/token", form)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)

	if tokenResp.RefreshToken != "" && tokenResp.RefreshToken != refreshToken {
		if err := c.tokens.Save(tokenResp.RefreshToken); err != nil {
			// The rotated token is only in memory now; surface loudly.
			c.logger.WithError(err).Error("Failed to persist rotated refresh token")
		}
	}

	c.logger.WithField("expires_in", tokenResp.ExpiresIn).Info("Meli access token refreshed")

	return c.accessToken, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	fullURL := c.cfg.BaseURL + path
	if len(params) > 0 {
		fullURL = fullURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
