package compose

import (
	"fmt"

	"github.com/germanamz/aix/pkg/modeladapter"
)

// ConfigurationError reports an invalid client setting, such as a non-string
// API key in a config file or an unknown variant. It is returned before any network call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("compose: configuration: %s %s", e.Field, e.Reason)
}

// ValidationError reports a compose parameter of the wrong type or one the
// selected variant does not accept. It is returned before any network call.
// Numeric ranges are not checked locally; the server enforces them.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("compose: invalid parameter %s: %s", e.Field, e.Reason)
}

// ResponseError is returned by [DecodeCompletion] when a response does not
// carry a completion. Compose itself never returns it.
type ResponseError struct {
	StatusCode int
	Kind       modeladapter.Kind
	Body       []byte
	Reason     string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("compose: status %d: %s", e.StatusCode, e.Reason)
}
