package compose

import (
	"strconv"

	"github.com/germanamz/aix/pkg/modeladapter"
)

// Completion is the typed view of a successful compose response.
type Completion struct {
	Text        string         // Generated text.
	Model       string         // Model that produced it, e.g. "GPT-J-6B".
	ComputeTime float64        // Server compute time, when reported.
	Echo        map[string]any // Remaining fields, usually the request parameters echoed back.
}

// DecodeCompletion extracts a Completion from resp. The server may wrap the
// fields in a "data" object; both shapes are accepted. A raw response, or a
// JSON body without a text field, yields a *ResponseError carrying the status
// and body so callers can report what the server actually said.
func DecodeCompletion(resp *modeladapter.Response) (Completion, error) {
	if resp == nil {
		return Completion{}, &ResponseError{Reason: "no response"}
	}

	if resp.Kind != modeladapter.Parsed {
		return Completion{}, responseError(resp, "response body is not JSON")
	}

	obj, ok := resp.Object()
	if !ok {
		return Completion{}, responseError(resp, "response is not a JSON object")
	}

	if data, ok := obj["data"].(map[string]any); ok {
		obj = data
	}

	text, ok := obj["text"].(string)
	if !ok {
		return Completion{}, responseError(resp, "response has no text")
	}

	c := Completion{
		Text: text,
		Echo: make(map[string]any, len(obj)),
	}

	if m, ok := obj["model"].(string); ok {
		c.Model = m
	}

	switch v := obj["compute_time"].(type) {
	case float64:
		c.ComputeTime = v
	case string:
		c.ComputeTime, _ = strconv.ParseFloat(v, 64)
	}

	for k, v := range obj {
		switch k {
		case "text", "model", "compute_time":
		default:
			c.Echo[k] = v
		}
	}

	return c, nil
}

func responseError(resp *modeladapter.Response, reason string) *ResponseError {
	return &ResponseError{
		StatusCode: resp.StatusCode,
		Kind:       resp.Kind,
		Body:       resp.Body,
		Reason:     reason,
	}
}
