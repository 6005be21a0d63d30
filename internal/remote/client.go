// Package remote talks to the record service that holds the canonical copy
// of every collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 10.0
	defaultBurst   = 5

	userAgent    = "Fushigi/1.0"
	maxErrorBody = 64 << 10
)

// TokenSource supplies the bearer credential for each request.
// An empty token sends the request unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	Tokens    TokenSource
	Logger    *slog.Logger

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client is a rate-limited client for the record service.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates a new Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	rps, burst := opts.RateLimit, opts.Burst
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		base:    base,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		tokens:  opts.Tokens,
		logger:  logger,
	}, nil
}

// errorPayload covers the error bodies the service and the dev remote produce.
type errorPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
}

func (p errorPayload) text() string {
	switch {
	case p.Message != "":
		return p.Message
	case p.Detail != "":
		return p.Detail
	default:
		return p.Title
	}
}

// do executes one request and returns the response body of a 2xx reply.
// Connectivity failures are RemoteTransport errors; non-2xx replies are
// RemoteProtocol errors carrying the status and server message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domainerrors.RemoteTransport(err, "rate limit wait")
	}

	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, domainerrors.RemoteTransport(err, "load credential")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("remote request", "method", method, "path", u.Path, "query", u.RawQuery)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domainerrors.RemoteTransport(err, fmt.Sprintf("%s %s", method, u.Path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, domainerrors.RemoteTransport(err, "read response")
		}
		return data, nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload errorPayload
	message := ""
	if json.Unmarshal(raw, &payload) == nil {
		message = payload.text()
	}
	return nil, domainerrors.RemoteProtocol(resp.StatusCode, message)
}
