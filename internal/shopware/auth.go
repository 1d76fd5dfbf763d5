package shopware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/cache"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

// defaultTokenLifetime applies when the token response has no expires_in.
const defaultTokenLifetime = 600 * time.Second

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate returns a valid bearer token, requesting a new one when the
// cached token is missing or inside its safety margin.
func (c *Client) Authenticate(ctx context.Context) (cache.Token, error) {
	if tok, ok := c.tokens.Get(c.clock.Now()); ok {
		return tok, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	if tok, ok := c.tokens.Get(c.clock.Now()); ok {
		return tok, nil
	}

	if c.creds == nil {
		return cache.Token{}, models.ErrNoCredentials
	}
	creds, err := c.creds.Credentials(ctx)
	if err != nil {
		return cache.Token{}, fmt.Errorf("load credentials: %w", err)
	}

	tok, err := c.requestToken(ctx, creds)
	c.metrics.TokenRefresh(err)
	if err != nil {
		c.log.Error("token request failed", zap.String("shop_url", creds.ShopURL), zap.Error(err))
		return cache.Token{}, err
	}
	c.tokens.Set(tok)
	return tok, nil
}

// TestConnection checks creds against the shop without touching the token cache.
func (c *Client) TestConnection(ctx context.Context, creds models.Credentials) error {
	_, err := c.requestToken(ctx, creds)
	return err
}

// InvalidateToken drops the cached token, e.g. after credentials change.
func (c *Client) InvalidateToken() {
	c.tokens.Invalidate()
}

func (c *Client) requestToken(ctx context.Context, creds models.Credentials) (cache.Token, error) {
	base := normalizeBaseURL(creds.ShopURL)
	if base == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return cache.Token{}, models.ErrNoCredentials
	}

	body, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
	})
	if err != nil {
		return cache.Token{}, fmt.Errorf("%s: encode: %w", opAuthenticate, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/oauth/token", bytes.NewReader(body))
	if err != nil {
		return cache.Token{}, fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	issued := c.clock.Now()
	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.metrics.ObserveRemote(opAuthenticate, err, time.Since(start))
		return cache.Token{}, fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		c.metrics.ObserveRemote(opAuthenticate, err, time.Since(start))
		return cache.Token{}, fmt.Errorf("%w: read token response: %w", models.ErrAuthentication, err)
	}

	if resp.StatusCode != http.StatusOK {
		uerr := parseUpstreamError(opAuthenticate, resp.StatusCode, b)
		c.metrics.ObserveRemote(opAuthenticate, uerr, time.Since(start))
		return cache.Token{}, fmt.Errorf("%w: %w", models.ErrAuthentication, uerr)
	}
	c.metrics.ObserveRemote(opAuthenticate, nil, time.Since(start))

	var tr tokenResponse
	if err := json.Unmarshal(b, &tr); err != nil || tr.AccessToken == "" {
		return cache.Token{}, fmt.Errorf("%w: token response without access_token", models.ErrAuthentication)
	}

	return cache.Token{
		AccessToken: tr.AccessToken,
		BaseURL:     base,
		ExpiresAt:   c.tokenExpiry(issued, tr.ExpiresIn),
	}, nil
}

// tokenExpiry is issued + lifetime - margin. The margin never eats more than
// half the lifetime.
func (c *Client) tokenExpiry(issued time.Time, expiresIn int) time.Time {
	lifetime := defaultTokenLifetime
	if expiresIn > 0 {
		lifetime = time.Duration(expiresIn) * time.Second
	}
	margin := c.tokenMargin
	if margin > lifetime/2 {
		margin = lifetime / 2
	}
	return issued.Add(lifetime - margin)
}
