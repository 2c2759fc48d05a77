package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/germanamz/aix/pkg/modeladapter"
)

// DefaultBaseURL is the AIx API base URL (no trailing slash).
const DefaultBaseURL = "https://api.aixsolutionsgroup.com/v1"

const (
	composePath  = "/compose"
	apiKeyHeader = "APIKey"
)

var _ Composer = (*Client)(nil)

// Client sends prompts to the compose endpoint. All of its state is fixed at
// construction, so one Client may be shared between goroutines.
type Client struct {
	modeladapter.ModelAdapter

	variant  Variant
	defaults []Option
}

// ClientOption configures a Client at construction.
type ClientOption func(*Client)

// WithVariant selects the request shape. The default is Current.
func WithVariant(v Variant) ClientOption {
	return func(c *Client) { c.variant = v }
}

// WithBaseURL overrides DefaultBaseURL, e.g. to point at a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.BaseURL = u }
}

// WithHTTPClient sets the HTTP client. A nil client uses http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.Client = hc }
}

// WithHeaders adds extra headers to every request.
func WithHeaders(h map[string]string) ClientOption {
	return func(c *Client) {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(h))
		}
		maps.Copy(c.Headers, h)
	}
}

// WithDefaults sets parameters applied to every call before the call's own
// options.
func WithDefaults(opts ...Option) ClientOption {
	return func(c *Client) { c.defaults = append(c.defaults, opts...) }
}

// New creates a Client authenticating with apiKey.
// An empty key is accepted; requests then carry no APIKey header and the
// server rejects them. It returns a *ConfigurationError if an option is
// invalid.
func New(apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{}
	c.BaseURL = DefaultBaseURL
	c.Auth = modeladapter.Auth{Key: apiKey, Header: apiKeyHeader}

	for _, o := range opts {
		o(c)
	}

	if !c.variant.valid() {
		return nil, &ConfigurationError{Field: "variant", Reason: fmt.Sprintf("%s is not supported", c.variant)}
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{Field: "base_url", Reason: fmt.Sprintf("%q is not an absolute http(s) URL", c.BaseURL)}
	}

	return c, nil
}

// Variant returns the request shape the client sends.
func (c *Client) Variant() Variant { return c.variant }

// Payload returns the JSON body Compose would send for prompt and opts,
// without sending it.
func (c *Client) Payload(prompt string, opts ...Option) ([]byte, error) {
	r := newRequest(prompt)

	for _, o := range c.defaults {
		o(&r)
	}
	for _, o := range opts {
		o(&r)
	}

	return r.payload(c.variant)
}

// Compose sends prompt to the model and returns its response.
//
// Parameter errors are returned as *ValidationError before any request is
// made. Network failures are returned wrapped in a
// *modeladapter.TransportError. Any HTTP response, including a non-2xx one,
// is returned without error: a JSON body as modeladapter.Parsed, anything
// else as modeladapter.Raw.
func (c *Client) Compose(ctx context.Context, prompt string, opts ...Option) (*modeladapter.Response, error) {
	body, err := c.Payload(prompt, opts...)
	if err != nil {
		return nil, err
	}

	resp, err := c.PostJSON(ctx, composePath, json.RawMessage(body))
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	return resp, nil
}
