package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
)

// ErrMissingCredential is returned before any request is made when a partner
// endpoint is called without a credential.
var ErrMissingCredential = errors.New("api key is not configured")

// APIError represents an error response from the platform.
type APIError struct {
	StatusCode int
	Message    string              // "error" (or "message") field, else the status text
	Code       string              // "errorCode" field, if any
	Details    map[string][]string // Per-field validation messages, if any
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// IsNotFound reports a 404 response.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type errorBody struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"errorCode"`
	Details   map[string][]string `json:"details"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Body:       body,
	}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Error != "":
			e.Message = eb.Error
		case eb.Message != "":
			e.Message = eb.Message
		}
		e.Code = eb.ErrorCode
		e.Details = eb.Details
	}
	return e
}

// call describes one REST operation.
type call struct {
	op     string // Operation name for logs and metrics
	method string
	base   string
	path   string
	query  url.Values
	body   any
	cred   auth.Credential
}

// doRequest performs a single HTTP request.
func (c *Client) doRequest(ctx context.Context, cl call) ([]byte, error) {
	fullURL := cl.base + cl.path
	if len(cl.query) > 0 {
		fullURL += "?" + cl.query.Encode()
	}

	var reqBody io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if cl.cred != nil {
		cl.cred.Apply(req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(cl.op, "error")
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.RecordAPIRequest(cl.op, strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// doWithRetry performs a request, retrying GETs with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, cl call) ([]byte, error) {
	if cl.method != http.MethodGet {
		return c.doRequest(ctx, cl)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			var jitter time.Duration
			if backoff > 0 {
				jitter = backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			}
			c.logger.Debug("retrying request",
				"op", cl.op,
				"attempt", attempt,
				"backoff", jitter,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, cl)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// do runs cl and decodes the response into result, if non-nil.
func (c *Client) do(ctx context.Context, cl call, result any) error {
	body, err := c.doWithRetry(ctx, cl)
	if err != nil {
		return err
	}

	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// partner returns a call against the partner API carrying the credential.
func (c *Client) partner(op, method, path string) (call, error) {
	if c.credential == nil {
		return call{}, ErrMissingCredential
	}
	if key, ok := c.credential.(auth.APIKey); ok && key == "" {
		return call{}, ErrMissingCredential
	}
	return call{
		op:     op,
		method: method,
		base:   c.endpoints.Insurance,
		path:   path,
		cred:   c.credential,
	}, nil
}
