package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

// Endpoints are the base URLs of the two APIs.
type Endpoints struct {
	Public    string // OTP and public tow-truck requests
	Insurance string // Partner API
}

// Client provides access to the public and partner REST APIs.
type Client struct {
	endpoints  Endpoints
	credential auth.Credential
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	userAgent  string

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(endpoints Endpoints, opts ...ClientOption) *Client {
	c := &Client{
		endpoints: Endpoints{
			Public:    strings.TrimSuffix(endpoints.Public, "/"),
			Insurance: strings.TrimSuffix(endpoints.Insurance, "/"),
		},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		userAgent:    version.UserAgent(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration for GET requests.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCredential sets the partner credential, normally an auth.APIKey.
func WithCredential(cred auth.Credential) ClientOption {
	return func(c *Client) {
		c.credential = cred
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}
