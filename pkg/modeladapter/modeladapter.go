package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Auth holds authentication settings for a model API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// Call describes a single request issued through [ModelAdapter.Request].
type Call struct {
	Method  Method            // HTTP method (default: POST).
	Path    string            // Path appended to BaseURL.
	Payload any               // JSON body; ignored when Files is set.
	Form    map[string]string // Form fields sent alongside Files.
	Files   []File            // Switches the body to multipart/form-data.
	Header  http.Header       // Applied after auth and custom headers.
}

// ModelAdapter holds shared state for model API clients. Embed it in
// concrete client structs to get request building, auth, and custom headers.
// Its fields are set once at construction and never mutated afterwards, so a
// ModelAdapter is safe for concurrent use.
type ModelAdapter struct {
	Auth    Auth              // Authentication settings.
	BaseURL string            // API base URL (no trailing slash).
	Client  *http.Client      // HTTP client; falls back to http.DefaultClient.
	Headers map[string]string // Extra headers applied to every request.
}

// New creates a ModelAdapter with the given settings.
// A nil client falls back to http.DefaultClient at call time.
func New(baseURL string, auth Auth, client *http.Client) ModelAdapter {
	return ModelAdapter{
		Auth:    auth,
		BaseURL: baseURL,
		Client:  client,
	}
}

// httpClient returns the configured client or http.DefaultClient.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	return http.DefaultClient
}

// authValue returns the header name and value for the configured key.
func (a *ModelAdapter) authValue() (string, string) {
	header := a.Auth.Header
	if header == "" {
		header = "Authorization"
	}

	value := a.Auth.Key
	if header == "Authorization" {
		scheme := a.Auth.Scheme
		if scheme == "" {
			scheme = "Bearer"
		}

		value = scheme + " " + value
	} else if a.Auth.Scheme != "" {
		value = a.Auth.Scheme + " " + value
	}

	return header, value
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method Method, path string, body io.Reader) (*http.Request, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method.String(), url, body)
	if err != nil {
		return nil, err
	}

	// Apply auth.
	if a.Auth.Key != "" {
		header, value := a.authValue()
		req.Header.Set(header, value)
	}

	// Apply custom headers.
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client and reads the whole
// body into a [Response]. Transport failures are returned as *TransportError.
func (a *ModelAdapter) Do(req *http.Request) (*Response, error) {
	resp, err := a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
	if err != nil {
		return nil, &TransportError{Op: "do request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read body", Err: err}
	}

	return decodeResponse(resp.StatusCode, resp.Header, body), nil
}

// Request sends c and returns the decoded response. Without files the
// payload is sent as a JSON body; with files the body is multipart form data
// built from c.Form and c.Files.
func (a *ModelAdapter) Request(ctx context.Context, c Call) (*Response, error) {
	method := c.Method
	if method == "" {
		method = MethodPost
	}

	var (
		body        io.Reader
		contentType string
	)

	if len(c.Files) == 0 {
		data, err := json.Marshal(c.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}

		body = bytes.NewReader(data)
		contentType = "application/json"
	} else {
		var buf bytes.Buffer

		ct, err := writeMultipart(&buf, c.Form, c.Files)
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}

		body = &buf
		contentType = ct
	}

	req, err := a.NewRequest(ctx, method, c.Path, body)
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}

	req.Header.Set("Content-Type", contentType)

	for k, vs := range c.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return a.Do(req)
}

// PostJSON marshals payload as JSON and sends a POST to the given path.
// The response is returned whatever its status; see [Response].
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload any) (*Response, error) {
	return a.Request(ctx, Call{Method: MethodPost, Path: path, Payload: payload})
}

// PostMultipart sends a multipart/form-data POST with the given form fields
// and files to path.
func (a *ModelAdapter) PostMultipart(ctx context.Context, path string, form map[string]string, files ...File) (*Response, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("post multipart: at least one file is required")
	}

	return a.Request(ctx, Call{Method: MethodPost, Path: path, Form: form, Files: files})
}
