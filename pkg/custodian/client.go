// Package custodian is the HTTP client for the remote key custodian API.
// Keys live inside the custodian and never leave it; the client only ever
// sees public keys, addresses and signatures.
package custodian

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the hosted custodian endpoint.
	DefaultBaseURL = "https://api.chapool.net"

	// DefaultTimeout is the HTTP client timeout applied when the caller does
	// not supply its own client.
	DefaultTimeout = 30 * time.Second

	userAgent = "go-remotesigner/1.0"
)

// Client is the custodian API client. It is stateless beyond the underlying
// HTTP connection pool and safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	// Service accessors
	Keys  *KeysService
	Sign  *SignService
	Orgs  *OrgsService
	Audit *AuditService
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL points the client at a custom custodian endpoint, e.g. a
// locally running lite signer.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for request debug logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new custodian API client authenticated with the given
// API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Keys = &KeysService{client: c}
	c.Sign = &SignService{client: c}
	c.Orgs = &OrgsService{client: c}
	c.Audit = &AuditService{client: c}

	return c
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the success wrapper of every API response body.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// doRequest performs an authenticated request and decodes the enveloped
// response into result. API failures are returned as *Error.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	reqURL, err := c.buildURL(path)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Custodian API request")

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, respBody)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return errors.Wrap(err, "failed to parse response envelope")
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return errors.Wrap(err, "failed to parse response data")
	}

	return nil
}

// buildURL joins the base URL and path, keeping any query string intact.
func (c *Client) buildURL(path string) (string, error) {
	if strings.Contains(path, "?") {
		return c.baseURL + path, nil
	}
	joined, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", errors.Wrap(err, "failed to build URL")
	}
	return joined, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
