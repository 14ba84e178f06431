package backend

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestObserver receives one observation per backend HTTP exchange.
// code is 0 when no response was received.
type RequestObserver interface {
	ObserveBackend(method, path string, code int, dur time.Duration)
}

// Client implements ports.RouteBackend against the operator backend's REST API.
//
// Reads are retried on transient failures; writes are sent exactly once,
// since the backend offers no idempotency key.
//
// The client is safe for concurrent use.
type Client struct {
	session      *http.Client
	baseURL      string
	token        string
	observer     RequestObserver
	maxAttempts  int
	retryBackoff time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default 10s-timeout client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.session = h }
}

func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithToken sets the bearer token obtained by the console's session layer.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base url is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		session:      &http.Client{Timeout: 10 * time.Second},
		baseURL:      baseURL,
		maxAttempts:  4,
		retryBackoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
