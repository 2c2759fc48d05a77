package modeladapter

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind tells which shape a [Response] carries.
type Kind int

const (
	// Parsed means the body decoded as JSON and Data holds the value.
	Parsed Kind = iota + 1
	// Raw means the body is not JSON; inspect StatusCode and Body.
	Raw
)

func (k Kind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Response is the result of a request. No status-code classification is
// applied: a JSON error body from the server is Parsed just like a success,
// so callers must inspect StatusCode or Data themselves.
type Response struct {
	Kind       Kind
	StatusCode int
	Header     http.Header
	Body       []byte // Raw body bytes, kept for both kinds.
	Data       any    // Decoded JSON value when Kind is Parsed. May be nil for a JSON null.
	DecodeErr  error  // Why decoding failed when Kind is Raw.
}

// Parsed reports whether the body decoded as JSON. It is false for a nil
// Response.
func (r *Response) Parsed() bool { return r != nil && r.Kind == Parsed }

// Object returns Data as a JSON object.
// The bool is false for Raw responses and for non-object JSON values.
func (r *Response) Object() (map[string]any, bool) {
	if !r.Parsed() {
		return nil, false
	}

	m, ok := r.Data.(map[string]any)
	return m, ok
}

// Success reports whether the status code is 2xx.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// decodeResponse attempts to decode body as JSON. A decode failure is not an
// error: the response is returned as Raw with the failure recorded.
func decodeResponse(status int, header http.Header, body []byte) *Response {
	r := &Response{
		StatusCode: status,
		Header:     header,
		Body:       body,
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		r.Kind = Raw
		r.DecodeErr = err

		return r
	}

	r.Kind = Parsed
	r.Data = v

	return r
}
