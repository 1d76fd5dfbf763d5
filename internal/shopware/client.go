// Package shopware is the adapter to the remote catalog's Admin API.
package shopware

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

	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/cache"
	"github.com/Cheertaboi/catalog-discount-service/internal/metrics"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/pkg/clock"
)

const (
	DefaultPageSize    = 500
	DefaultMaxPages    = 20
	DefaultTokenMargin = 60 * time.Second
	// DefaultCurrencyID is the platform's system currency (EUR).
	DefaultCurrencyID = "b7d2554b0ce847cd82f3ac9bd1c0dfca"

	maxResponseBody = 16 << 20
)

const (
	opAuthenticate = "authenticate"
	opSearch       = "search products"
	opGetProduct   = "get product"
	opPatchPrice   = "patch price"
	opListValues   = "list attribute values"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialsSource supplies the integration credentials on demand.
type CredentialsSource interface {
	Credentials(ctx context.Context) (models.Credentials, error)
}

// CredentialsFunc adapts a function to CredentialsSource.
type CredentialsFunc func(ctx context.Context) (models.Credentials, error)

func (f CredentialsFunc) Credentials(ctx context.Context) (models.Credentials, error) {
	return f(ctx)
}

type Options struct {
	Doer        Doer
	Credentials CredentialsSource
	Clock       clock.Clock
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	PageSize    int
	MaxPages    int
	TokenMargin time.Duration
	CurrencyID  string
}

// Client talks to one shop. It is safe for concurrent use; the bearer token
// is shared by all callers and refreshed by one of them at a time.
type Client struct {
	doer        Doer
	creds       CredentialsSource
	clock       clock.Clock
	log         *zap.Logger
	metrics     *metrics.Metrics
	pageSize    int
	maxPages    int
	tokenMargin time.Duration
	currencyID  string

	tokens    *cache.TokenCache
	refreshMu sync.Mutex
}

func New(opts Options) *Client {
	c := &Client{
		doer:        opts.Doer,
		creds:       opts.Credentials,
		clock:       opts.Clock,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		pageSize:    opts.PageSize,
		maxPages:    opts.MaxPages,
		tokenMargin: opts.TokenMargin,
		currencyID:  opts.CurrencyID,
		tokens:      cache.NewTokenCache(),
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: 30 * time.Second}
	}
	if c.clock == nil {
		c.clock = clock.NewRealClock()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.pageSize <= 0 || c.pageSize > DefaultPageSize {
		c.pageSize = DefaultPageSize
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}
	if c.tokenMargin < 0 {
		c.tokenMargin = 0
	}
	if c.currencyID == "" {
		c.currencyID = DefaultCurrencyID
	}
	return c
}

// do sends an authenticated JSON request and returns status and body.
// Only transport and authentication problems are returned as errors.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (int, []byte, error) {
	tok, err := c.Authenticate(ctx)
	if err != nil {
		return 0, nil, err
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, tok.BaseURL+path, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.metrics.ObserveRemote(op, err, time.Since(start))
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.metrics.ObserveRemote(op, err, time.Since(start))
		return 0, nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	var statusErr error
	if resp.StatusCode >= 300 {
		statusErr = fmt.Errorf("status %d", resp.StatusCode)
	}
	c.metrics.ObserveRemote(op, statusErr, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		// the token was revoked or the shop restarted; refetch next time
		c.tokens.Invalidate()
	}

	c.log.Debug("catalog request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, b, nil
}

func normalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
