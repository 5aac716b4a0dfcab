// Package client talks to the AmCham REST backend. Every failure leaving this
// package is a *domain.APIError.
package client

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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
	// diagnosticExcerpt bounds the body excerpt logged for 403 responses.
	diagnosticExcerpt = 512
)

// TokenSource supplies the bearer token for protected endpoints.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// AuthFailure describes a 401 or 403 received on an authenticated call.
type AuthFailure struct {
	Status int
	Method string
	Path   string
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	PublicPaths []string
	HTTPClient  *http.Client
	Logger      *slog.Logger
	Metrics     *metrics.Collector
}

// Client is the shared transport of all resource clients.
type Client struct {
	base    *url.URL
	http    *http.Client
	public  []publicPath
	log     *slog.Logger
	metrics *metrics.Collector

	mu            sync.RWMutex
	tokens        TokenSource
	onAuthFailure func(context.Context, AuthFailure)
}

// New returns a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		base:    base,
		http:    httpClient,
		public:  parsePublicPaths(opts.PublicPaths),
		log:     log,
		metrics: opts.Metrics,
	}, nil
}

// SetTokenSource installs the provider of bearer tokens.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnAuthFailure registers fn to run after a 401 or 403 on a call that carried
// a token.
func (c *Client) OnAuthFailure(fn func(context.Context, AuthFailure)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthFailure = fn
}

// Call describes one backend request.
type Call struct {
	// Resource labels metrics and selects the message table.
	Resource string
	Method   string
	Path     string
	Query    url.Values
	// Body is sent as JSON unless Form is set.
	Body     any
	Form     *Form
	Messages Messages
}

// Do performs call and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, call Call, out any) error {
	start := time.Now()
	status, err := c.do(ctx, call, out)
	c.metrics.ObserveBackend(call.Resource, call.Method, status, time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, call Call, out any) (int, error) {
	messages := call.Messages
	if messages == nil {
		messages = DefaultMessages
	}

	c.mu.RLock()
	tokens, onAuthFailure := c.tokens, c.onAuthFailure
	c.mu.RUnlock()

	token := ""
	if !c.isPublic(call.Method, call.Path) {
		var ok bool
		if tokens != nil {
			token, ok = tokens.AccessToken(ctx)
		}
		if !ok || token == "" {
			return http.StatusUnauthorized, domain.NewAPIError(http.StatusUnauthorized, messages.For(http.StatusUnauthorized), errors.New("no session token"))
		}
	}

	req, err := c.newRequest(ctx, call)
	if err != nil {
		return domain.StatusConnection, domain.NewAPIError(domain.StatusConnection, messages.For(domain.StatusConnection), err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.StatusConnection, domain.NewAPIError(domain.StatusConnection, messages.For(domain.StatusConnection), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return resp.StatusCode, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, domain.NewAPIError(resp.StatusCode, messages.For(http.StatusInternalServerError), fmt.Errorf("decode response: %w", err))
		}
		return resp.StatusCode, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := normalize(resp.StatusCode, body, messages)

	if token != "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if resp.StatusCode == http.StatusForbidden {
			c.log.WarnContext(ctx, "backend denied access",
				slog.String("method", call.Method),
				slog.String("path", call.Path),
				slog.String("body", excerpt(body, diagnosticExcerpt)),
			)
		}
		if onAuthFailure != nil {
			onAuthFailure(ctx, AuthFailure{Status: resp.StatusCode, Method: call.Method, Path: call.Path})
		}
	}
	return resp.StatusCode, apiErr
}

func (c *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	u := *c.base
	u.Path = c.base.Path + call.Path
	if len(call.Query) > 0 {
		u.RawQuery = call.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case call.Form != nil:
		buf, ct, err := call.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case call.Body != nil:
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	id := domain.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, id)
	return req, nil
}

func excerpt(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
